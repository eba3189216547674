package engine

import (
	"fmt"

	"katydid-common-validation/pkg/validator"
	"katydid-common-validation/pkg/validator/path"
)

// Scene 验证场景，使用位运算支持场景组合
//
//	const (
//	    SceneCreate engine.Scene = 1 << iota
//	    SceneUpdate
//	)
//	constraint.Scenes = SceneCreate | SceneUpdate
type Scene int64

// 预定义的通用验证场景常量
const (
	SceneNone Scene = 0  // 无场景
	SceneAll  Scene = -1 // 所有场景(111...111)
)

// ConstraintValidator 约束检查接口
// 检查失败时返回 false，并可通过 ctx 报告一条或多条违规记录
type ConstraintValidator interface {
	IsValid(value any, ctx *validator.Context) bool
}

// ConstraintValidatorFunc 函数适配器
type ConstraintValidatorFunc func(value any, ctx *validator.Context) bool

// IsValid 实现 ConstraintValidator 接口
func (f ConstraintValidatorFunc) IsValid(value any, ctx *validator.Context) bool {
	return f(value, ctx)
}

// Constraint 一条约束：描述 + 检查逻辑 + 适用场景
type Constraint struct {
	// Descriptor 约束描述，默认消息模板来源
	Descriptor validator.ConstraintDescriptor
	// Validator 检查逻辑
	Validator ConstraintValidator
	// Scenes 适用场景，SceneNone 表示适用于所有场景；
	// 为 SceneNone 时引擎会尝试按描述的 "groups" 属性解析
	Scenes Scene
}

// Matches 约束是否适用于当前场景，只看显式设置的 Scenes
func (c Constraint) Matches(scene Scene) bool {
	return c.Scenes.matches(scene)
}

// matches SceneNone 表示适用于所有场景
func (s Scene) matches(scene Scene) bool {
	return s == SceneNone || s&scene != 0
}

// Name 约束名称
func (c Constraint) Name() string {
	if c.Descriptor == nil {
		return ""
	}
	return c.Descriptor.Name()
}

// Violation 面向调用方的违规对象
type Violation struct {
	// MessageTemplate 未插值的消息模板
	MessageTemplate string
	// Path 违规所在的属性路径
	Path path.Path
	// Constraint 产生该违规的约束描述
	Constraint validator.ConstraintDescriptor
	// InvalidValue 被验证的值
	InvalidValue any
}

// Error 实现 error 接口
func (v Violation) Error() string {
	if v.Path.IsRoot() {
		return v.MessageTemplate
	}
	return fmt.Sprintf("%s: %s", v.Path, v.MessageTemplate)
}
