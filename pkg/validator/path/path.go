package path

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Path 属性路径：从验证起点开始的有序节点序列
//
// 设计说明：
//   - 零值即根路径（没有任何节点）
//   - 值语义：所有派生操作都会分配新的底层数组，接收者保持不变
//   - 已提交的错误消息持有的路径不会因后续分支而被修改
//
// 示例：
//
//	p := path.NewPath("order").Append("items").WithLeafInCollection().WithLeafIndex(2)
//	fmt.Println(p) // order.items[2]
type Path struct {
	nodes []Node
}

// Root 返回根路径
func Root() Path {
	return Path{}
}

// NewPath 创建只包含一个节点的新路径
func NewPath(name string) Path {
	return Path{nodes: []Node{NewNode(name)}}
}

// IsRoot 是否为根路径
func (p Path) IsRoot() bool {
	return len(p.nodes) == 0
}

// Len 节点数量
func (p Path) Len() int {
	return len(p.nodes)
}

// Leaf 返回最后一个节点，根路径时 ok 为 false
func (p Path) Leaf() (leaf Node, ok bool) {
	if p.IsRoot() {
		return Node{}, false
	}
	return p.nodes[len(p.nodes)-1], true
}

// Nodes 返回节点序列的副本
func (p Path) Nodes() []Node {
	return p.cloneNodes(0)
}

// Copy 返回拥有独立节点序列的路径
func (p Path) Copy() Path {
	if p.IsRoot() {
		return Path{}
	}
	return Path{nodes: p.cloneNodes(0)}
}

// Append 返回追加了一个节点的新路径
func (p Path) Append(name string) Path {
	node := NewNode(name)
	nodes := p.cloneNodes(1)
	return Path{nodes: append(nodes, node)}
}

// WithLeafInCollection 返回叶子节点被标记为集合元素的新路径
func (p Path) WithLeafInCollection() Path {
	return p.replaceLeaf(Node.withInCollection)
}

// WithLeafIndex 返回叶子节点带有索引的新路径
// 叶子必须已标记为集合元素且尚未设置限定符
func (p Path) WithLeafIndex(index int) Path {
	return p.replaceLeaf(func(n Node) Node {
		return n.withIndex(index)
	})
}

// WithLeafKey 返回叶子节点带有键的新路径
// 叶子必须已标记为集合元素且尚未设置限定符
func (p Path) WithLeafKey(key any) Path {
	return p.replaceLeaf(func(n Node) Node {
		return n.withKey(key)
	})
}

// Equal 判断两条路径是否相同（键使用深度比较）
func (p Path) Equal(other Path) bool {
	if len(p.nodes) != len(other.nodes) {
		return false
	}
	for i := range p.nodes {
		a, b := p.nodes[i], other.nodes[i]
		if a.name != b.name ||
			a.inCollection != b.inCollection ||
			a.hasIndex != b.hasIndex || a.index != b.index ||
			a.hasKey != b.hasKey || !reflect.DeepEqual(a.key, b.key) {
			return false
		}
	}
	return true
}

// String 返回便于日志阅读的路径表示，如 items[2].name、attrs[color]
// 注意：仅用于调试输出，不是稳定的序列化格式
func (p Path) String() string {
	if p.IsRoot() {
		return ""
	}

	var builder strings.Builder
	for i, n := range p.nodes {
		if i > 0 {
			builder.WriteByte('.')
		}
		builder.WriteString(n.name)
		if !n.inCollection {
			continue
		}
		builder.WriteByte('[')
		switch {
		case n.hasIndex:
			builder.WriteString(strconv.Itoa(n.index))
		case n.hasKey:
			builder.WriteString(fmt.Sprint(n.key))
		}
		builder.WriteByte(']')
	}
	return builder.String()
}

// replaceLeaf 复制节点序列并替换叶子节点
func (p Path) replaceLeaf(fn func(Node) Node) Path {
	leaf, ok := p.Leaf()
	if !ok {
		panic(ErrNoLeaf)
	}
	nodes := p.cloneNodes(0)
	nodes[len(nodes)-1] = fn(leaf)
	return Path{nodes: nodes}
}

// cloneNodes 复制节点序列，extra 为额外预留的容量
func (p Path) cloneNodes(extra int) []Node {
	nodes := make([]Node, len(p.nodes), len(p.nodes)+extra)
	copy(nodes, p.nodes)
	return nodes
}
