package engine

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	playground "github.com/go-playground/validator/v10"

	"katydid-common-validation/pkg/types"
	"katydid-common-validation/pkg/validator"
)

// AttrTag 标签约束在属性表中保存验证标签的键
const AttrTag = "tag"

var (
	// ErrNotCollection 逐元素约束作用在非集合值上
	ErrNotCollection = errors.New("elements constraint requires a slice, array or map value")
)

// Tag 创建基于 go-playground/validator 标签的约束，如 "required"、"min=3,max=20"
// message 为空时从配置中查找默认消息模板
//
// 示例：
//
//	e.ValidateProperty(path.NewPath("user"), "email", u.Email, engine.SceneAll,
//	    e.Tag("required,email", ""))
func (e *Engine) Tag(tag, message string) Constraint {
	return Constraint{
		Descriptor: e.tagDescriptor(tag, message),
		Validator: ConstraintValidatorFunc(func(value any, _ *validator.Context) bool {
			return e.playground.Var(value, tag) == nil
		}),
	}
}

// Elements 创建逐元素检查的约束，value 必须是切片、数组或 Map（或指向它们的指针）
//
// 每个不满足 tag 的元素报告一条违规，路径为 <起始路径>.property[索引或键]，
// 并禁用默认消息；Map 的键按字符串形式排序以保证顺序稳定
//
// nil 与 nil 指针视为没有元素；其他类型的值会以 ErrNotCollection panic
func (e *Engine) Elements(property, tag, message string) Constraint {
	desc := e.tagDescriptor(tag, message)
	template, _ := desc.Attributes().GetString(types.AttrMessage)

	return Constraint{
		Descriptor: desc,
		Validator: ConstraintValidatorFunc(func(value any, ctx *validator.Context) bool {
			rv := reflect.ValueOf(value)
			for rv.Kind() == reflect.Ptr && !rv.IsNil() {
				rv = rv.Elem()
			}

			valid := true
			report := func() validator.IterableNodeBuilder {
				if valid {
					ctx.DisableDefaultConstraintViolation()
					valid = false
				}
				return ctx.BuildConstraintViolationWithTemplate(template).AddNode(property).InIterable()
			}

			switch rv.Kind() {
			case reflect.Invalid, reflect.Ptr:
				return true
			case reflect.Slice, reflect.Array:
				for i := 0; i < rv.Len(); i++ {
					if e.playground.Var(rv.Index(i).Interface(), tag) != nil {
						report().AtIndex(i).AddConstraintViolation()
					}
				}
			case reflect.Map:
				keys := rv.MapKeys()
				sort.Slice(keys, func(i, j int) bool {
					return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
				})
				for _, k := range keys {
					if e.playground.Var(rv.MapIndex(k).Interface(), tag) != nil {
						report().AtKey(k.Interface()).AddConstraintViolation()
					}
				}
			default:
				panic(ErrNotCollection)
			}
			return valid
		}),
	}
}

// RegisterValidation 注册自定义验证标签
func (e *Engine) RegisterValidation(tag string, fn func(value any, param string) bool) error {
	return e.playground.RegisterValidation(tag, func(fl playground.FieldLevel) bool {
		return fn(fl.Field().Interface(), fl.Param())
	})
}

// RegisterAlias 注册标签别名
func (e *Engine) RegisterAlias(alias, tags string) {
	e.playground.RegisterAlias(alias, tags)
}

// tagDescriptor 构造标签约束的描述
func (e *Engine) tagDescriptor(tag, message string) validator.ConstraintDescriptor {
	if message == "" {
		message = e.cfg.MessageFor(tag)
	}
	attrs := types.NewAttributes(2)
	attrs.Set(types.AttrMessage, message)
	attrs.Set(AttrTag, tag)
	return validator.NewDescriptor(tag, attrs)
}
