package validator

import (
	"errors"

	"katydid-common-validation/pkg/validator/path"
)

var (
	// ErrInvalidSuppressionState 禁用了默认消息却没有报告任何自定义消息
	// 这是约束实现者的编程错误，而不是用户数据验证失败，引擎必须向上传递
	ErrInvalidSuppressionState = errors.New("at least one custom message must be created if the default error message gets disabled")

	// ErrNilDescriptor 约束描述为 nil
	ErrNilDescriptor = errors.New("constraint descriptor cannot be nil")

	// ErrDetachedBuilder 构建器没有所属的验证上下文（零值构建器）
	ErrDetachedBuilder = errors.New("violation builder is not attached to a context")
)

// ErrorMessage 一条已提交的违规记录：消息模板 + 路径快照
// 设计原则：值对象模式，创建后不可变
type ErrorMessage struct {
	messageTemplate string
	propertyPath    path.Path
}

// NewErrorMessage 创建违规记录
func NewErrorMessage(messageTemplate string, propertyPath path.Path) ErrorMessage {
	return ErrorMessage{
		messageTemplate: messageTemplate,
		propertyPath:    propertyPath,
	}
}

// MessageTemplate 消息模板（未插值）
func (m ErrorMessage) MessageTemplate() string {
	return m.messageTemplate
}

// Path 违规所在的属性路径
func (m ErrorMessage) Path() path.Path {
	return m.propertyPath
}
