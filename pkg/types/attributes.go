package types

import (
	"maps"
)

// 约束描述常用的属性名
const (
	AttrMessage = "message" // 默认消息模板
	AttrGroups  = "groups"  // 所属分组，由引擎解析为场景
)

// Attributes 约束属性表，存放约束声明时的全部参数
//
// 设计说明：
//   - 基于 map[string]any，支持任意类型的属性值
//   - "message" 属性即约束的默认消息模板
//   - 类型转换失败时返回零值和 false
//
// 线程安全：
//   - 与普通 map 相同，构建完成后只读使用是安全的
//   - 并发读写需要外部加锁
type Attributes map[string]any

// NewAttributes 创建属性表
func NewAttributes(capacity int) Attributes {
	return make(Attributes, capacity)
}

// Set 设置属性，空键会被忽略
//
//go:inline
func (a Attributes) Set(key string, value any) {
	if len(key) == 0 {
		return
	}
	a[key] = value
}

// GetString 获取字符串属性
func (a Attributes) GetString(key string) (string, bool) {
	value, exists := a[key]
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// GetStringSlice 获取字符串切片属性
func (a Attributes) GetStringSlice(key string) ([]string, bool) {
	v, ok := a[key]
	if !ok {
		return nil, false
	}

	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		strs := make([]string, len(val))
		for i := range val {
			str, ok := val[i].(string)
			if !ok {
				return nil, false
			}
			strs[i] = str
		}
		return strs, true
	}
	return nil, false
}

// Clone 浅拷贝
func (a Attributes) Clone() Attributes {
	if len(a) == 0 {
		return NewAttributes(0)
	}
	return maps.Clone(a)
}
