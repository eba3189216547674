package engine

import (
	"fmt"

	playground "github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"katydid-common-validation/pkg/logger"
	"katydid-common-validation/pkg/types"
	"katydid-common-validation/pkg/validator"
	"katydid-common-validation/pkg/validator/config"
	"katydid-common-validation/pkg/validator/path"
)

// Engine 约束验证引擎
//
// 职责：
//   - 为每个约束检查准备预装了起始路径和约束描述的 Context
//   - 调用约束检查，失败时汇总 Context 中的违规记录
//   - 将违规记录转换为面向调用方的 Violation
//
// 线程安全：Engine 本身只读，可在多个 goroutine 中并发使用；
// 每次约束检查使用独立的 Context
type Engine struct {
	cfg        *config.Config
	log        *zap.Logger
	playground *playground.Validate
	scenes     map[string]Scene
}

// Option 引擎选项
type Option func(*Engine)

// WithConfig 设置引擎配置
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithPlayground 使用外部的 go-playground/validator 实例
func WithPlayground(v *playground.Validate) Option {
	return func(e *Engine) {
		if v != nil {
			e.playground = v
		}
	}
}

// WithScenes 注册分组名到场景的映射，用于解析约束描述中的 "groups" 属性
func WithScenes(scenes map[string]Scene) Option {
	return func(e *Engine) {
		for name, scene := range scenes {
			e.scenes[name] = scene
		}
	}
}

// New 创建验证引擎
//
// 未通过 WithLogger 指定日志记录器时，按配置中的 Log 段创建；
// 日志配置无效时退回默认日志配置并记录一条警告
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:    config.Default(),
		scenes: make(map[string]Scene),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = newLogger(e.cfg.Log)
	}
	if e.playground == nil {
		e.playground = playground.New()
	}
	return e
}

// newLogger 按日志配置创建记录器
func newLogger(cfg logger.Config) *zap.Logger {
	log, err := logger.New(cfg)
	if err == nil {
		return log
	}
	fallback, ferr := logger.New(logger.DefaultConfig())
	if ferr != nil {
		return logger.Nop()
	}
	fallback.Warn("invalid log config, using defaults", zap.Error(err))
	return fallback
}

// Config 当前配置
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// ValidateValue 在 base 路径上对 value 执行所有适用于 scene 的约束
//
// 错误处理：
//   - 某个约束禁用了默认消息却没有报告任何记录时，该约束产生一个错误，其余约束继续执行
//   - 开启 FailFast 时，该错误与违规一样终止后续约束
//   - 所有这类错误通过 multierror 聚合返回，同时返回已收集的违规
//
// 返回：违规列表（nil 表示验证通过）和聚合错误
func (e *Engine) ValidateValue(base path.Path, value any, scene Scene, constraints ...Constraint) ([]Violation, error) {
	var (
		violations []Violation
		result     *multierror.Error
	)

	for _, c := range constraints {
		if !e.scenesOf(c).matches(scene) {
			continue
		}

		found, err := e.check(base, value, c)
		if err != nil {
			e.log.Warn("constraint suppressed its default message without reporting",
				zap.String("constraint", c.Name()),
				zap.Stringer("path", base),
			)
			result = multierror.Append(result, fmt.Errorf("constraint %q at %q: %w", c.Name(), base, err))
			if e.cfg.FailFast {
				break
			}
			continue
		}
		if len(found) == 0 {
			continue
		}

		violations = append(violations, found...)
		if limit := e.cfg.MaxViolations; limit > 0 && len(violations) >= limit {
			violations = violations[:limit]
			e.log.Debug("violation limit reached", zap.Int("limit", limit))
			break
		}
		if e.cfg.FailFast {
			break
		}
	}

	return violations, result.ErrorOrNil()
}

// ValidateProperty 与 ValidateValue 相同，起始路径为 base 追加属性名 name
func (e *Engine) ValidateProperty(base path.Path, name string, value any, scene Scene, constraints ...Constraint) ([]Violation, error) {
	return e.ValidateValue(base.Append(name), value, scene, constraints...)
}

// scenesOf 约束的适用场景
// 未显式设置 Scenes 时，按描述的 "groups" 属性在已注册的分组中解析，未注册的分组名被忽略
func (e *Engine) scenesOf(c Constraint) Scene {
	if c.Scenes != SceneNone || c.Descriptor == nil {
		return c.Scenes
	}
	groups, ok := c.Descriptor.Attributes().GetStringSlice(types.AttrGroups)
	if !ok {
		return SceneNone
	}

	var scenes Scene
	for _, group := range groups {
		scene, ok := e.scenes[group]
		if !ok {
			e.log.Debug("unknown constraint group", zap.String("constraint", c.Name()), zap.String("group", group))
			continue
		}
		scenes |= scene
	}
	return scenes
}

// check 执行单个约束检查
func (e *Engine) check(base path.Path, value any, c Constraint) ([]Violation, error) {
	if c.Validator == nil {
		return nil, nil
	}

	ctx := validator.AcquireContext(base, c.Descriptor)
	defer validator.ReleaseContext(ctx)

	if c.Validator.IsValid(value, ctx) {
		return nil, nil
	}

	messages, err := ctx.ErrorMessages()
	if err != nil {
		return nil, err
	}

	violations := make([]Violation, len(messages))
	for i, m := range messages {
		violations[i] = Violation{
			MessageTemplate: m.MessageTemplate(),
			Path:            m.Path(),
			Constraint:      c.Descriptor,
			InvalidValue:    value,
		}
		e.log.Debug("constraint violation",
			zap.String("constraint", c.Name()),
			zap.Stringer("path", m.Path()),
			zap.String("template", m.MessageTemplate()),
		)
	}
	return violations, nil
}
