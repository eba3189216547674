package validator

import "katydid-common-validation/pkg/types"

// ConstraintDescriptor 约束描述
// 由外部的元数据解析提供，这里只关心名称和属性表
type ConstraintDescriptor interface {
	// Name 约束名称（如 required、email、min）
	Name() string

	// Attributes 约束声明时的全部属性，默认消息模板位于 "message"
	Attributes() types.Attributes
}

// descriptor 默认的约束描述实现
type descriptor struct {
	name       string
	attributes types.Attributes
}

// NewDescriptor 创建约束描述，属性表会被浅拷贝
func NewDescriptor(name string, attributes types.Attributes) ConstraintDescriptor {
	return &descriptor{
		name:       name,
		attributes: attributes.Clone(),
	}
}

// Name 实现 ConstraintDescriptor 接口
func (d *descriptor) Name() string {
	return d.name
}

// Attributes 实现 ConstraintDescriptor 接口
func (d *descriptor) Attributes() types.Attributes {
	return d.attributes
}
