package validator

import (
	"katydid-common-validation/pkg/types"
	"katydid-common-validation/pkg/validator/path"
)

// defaultMessagesCapacity 违规记录的预分配容量
const defaultMessagesCapacity = 3

// Context 约束验证上下文，一次约束检查对应一个实例
//
// 职责：
//   - 收集约束实现者报告的违规记录（消息模板 + 属性路径）
//   - 管理默认消息的禁用标记
//   - 最终汇总时决定是否追加默认消息
//
// 生命周期：
//  1. 引擎创建上下文，预先装入起始路径和约束描述
//  2. 约束实现者调用 DisableDefaultConstraintViolation / BuildConstraintViolationWithTemplate
//  3. 引擎调用 ErrorMessages 读取最终结果（只调用一次）
//  4. 丢弃或通过 ReleaseContext 归还对象池
//
// 线程安全：不支持并发访问，只在一次约束检查内使用
//
// 示例：
//
//	func (c *priceCheck) IsValid(value any, ctx *validator.Context) bool {
//	    ctx.DisableDefaultConstraintViolation()
//	    ctx.BuildConstraintViolationWithTemplate("{price.negative}").
//	        AddNode("items").
//	        InIterable().AtIndex(2).
//	        AddConstraintViolation()
//	    return false
//	}
type Context struct {
	// propertyPath 上下文创建时的起始路径
	propertyPath path.Path
	// descriptor 约束描述，默认消息模板来源
	descriptor ConstraintDescriptor
	// defaultDisabled 是否禁用默认消息
	defaultDisabled bool
	// errorMessages 按提交顺序保存的违规记录
	errorMessages []ErrorMessage
}

// NewContext 创建约束验证上下文
func NewContext(propertyPath path.Path, descriptor ConstraintDescriptor) *Context {
	if descriptor == nil {
		panic(ErrNilDescriptor)
	}
	return &Context{
		propertyPath:  propertyPath,
		descriptor:    descriptor,
		errorMessages: make([]ErrorMessage, 0, defaultMessagesCapacity),
	}
}

// DisableDefaultConstraintViolation 禁用默认消息
// 幂等操作，不影响已提交的违规记录
func (c *Context) DisableDefaultConstraintViolation() {
	c.defaultDisabled = true
}

// IsDefaultDisabled 默认消息是否已禁用
func (c *Context) IsDefaultDisabled() bool {
	return c.defaultDisabled
}

// DefaultConstraintMessageTemplate 默认消息模板，取自约束属性 "message"
// 属性不存在或不是字符串时返回空字符串
func (c *Context) DefaultConstraintMessageTemplate() string {
	template, _ := c.descriptor.Attributes().GetString(types.AttrMessage)
	return template
}

// BuildConstraintViolationWithTemplate 以指定的消息模板开始构建一条违规记录
// 只有调用 AddConstraintViolation 后才会真正写入上下文
func (c *Context) BuildConstraintViolationWithTemplate(messageTemplate string) ViolationBuilder {
	return ViolationBuilder{
		context:         c,
		messageTemplate: messageTemplate,
		propertyPath:    c.propertyPath,
	}
}

// ConstraintDescriptor 当前约束描述
func (c *Context) ConstraintDescriptor() ConstraintDescriptor {
	return c.descriptor
}

// BasePath 上下文的起始路径
func (c *Context) BasePath() path.Path {
	return c.propertyPath
}

// Len 已提交的违规记录数量（不含默认消息）
func (c *Context) Len() int {
	return len(c.errorMessages)
}

// ErrorMessages 汇总违规记录
//
// 规则：
//   - 禁用了默认消息且没有任何自定义记录时返回 ErrInvalidSuppressionState
//   - 否则返回已提交记录的副本；未禁用默认消息时在末尾追加 (默认模板, 起始路径)
//
// 不修改上下文状态，重复调用结果一致
func (c *Context) ErrorMessages() ([]ErrorMessage, error) {
	if c.defaultDisabled && len(c.errorMessages) == 0 {
		return nil, ErrInvalidSuppressionState
	}

	size := len(c.errorMessages)
	if !c.defaultDisabled {
		size++
	}

	messages := make([]ErrorMessage, 0, size)
	messages = append(messages, c.errorMessages...)
	if !c.defaultDisabled {
		messages = append(messages, NewErrorMessage(c.DefaultConstraintMessageTemplate(), c.propertyPath))
	}
	return messages, nil
}

// addErrorMessage 提交一条违规记录，只由构建器的终止操作调用
func (c *Context) addErrorMessage(messageTemplate string, propertyPath path.Path) {
	c.errorMessages = append(c.errorMessages, NewErrorMessage(messageTemplate, propertyPath))
}
