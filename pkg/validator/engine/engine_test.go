package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"katydid-common-validation/pkg/types"
	"katydid-common-validation/pkg/validator"
	"katydid-common-validation/pkg/validator/config"
	"katydid-common-validation/pkg/validator/path"
)

// 测试场景常量
const (
	SceneCreate Scene = 1 << iota
	SceneUpdate
)

// violationView 便于断言的违规视图
type violationView struct {
	Template string
	Path     string
}

func viewOf(violations []Violation) []violationView {
	views := make([]violationView, len(violations))
	for i, v := range violations {
		views[i] = violationView{Template: v.MessageTemplate, Path: v.Path.String()}
	}
	return views
}

// custom 创建自定义检查的约束
func custom(name string, fn ConstraintValidatorFunc) Constraint {
	return Constraint{
		Descriptor: validator.NewDescriptor(name, types.Attributes{types.AttrMessage: "{" + name + "}"}),
		Validator:  fn,
	}
}

func TestEngine_TagConstraint(t *testing.T) {
	cfg := config.Default()
	cfg.Messages["required"] = "{user.required}"
	e := New(WithConfig(cfg))
	base := path.NewPath("user")

	tests := []struct {
		name  string
		value any
		tag   string
		msg   string
		want  []violationView
	}{
		{
			name:  "必填为空使用配置的默认消息",
			value: "",
			tag:   "required",
			want:  []violationView{{Template: "{user.required}", Path: "user.email"}},
		},
		{
			name:  "未配置时使用标签模板",
			value: "not-an-email",
			tag:   "email",
			want:  []violationView{{Template: "{validator.email}", Path: "user.email"}},
		},
		{
			name:  "显式消息优先",
			value: "ab",
			tag:   "min=3",
			msg:   "用户名长度不能少于3个字符",
			want:  []violationView{{Template: "用户名长度不能少于3个字符", Path: "user.email"}},
		},
		{
			name:  "验证通过",
			value: "test@example.com",
			tag:   "required,email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := e.ValidateProperty(base, "email", tt.value, SceneAll, e.Tag(tt.tag, tt.msg))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, violations)
				return
			}
			assert.Equal(t, tt.want, viewOf(violations))
			assert.Equal(t, tt.value, violations[0].InvalidValue)
			tag, _ := violations[0].Constraint.Attributes().GetString(AttrTag)
			assert.Equal(t, tt.tag, tag)
		})
	}
}

func TestEngine_CustomConstraintPaths(t *testing.T) {
	e := New()
	lines := custom("order_lines", func(value any, ctx *validator.Context) bool {
		ctx.DisableDefaultConstraintViolation()
		ctx.BuildConstraintViolationWithTemplate("{qty.positive}").
			AddNode("lines").InIterable().AtIndex(1).
			AddNode("qty").
			AddConstraintViolation()
		ctx.BuildConstraintViolationWithTemplate("{attr.unknown}").
			AddNode("attrs").InIterable().AtKey("color").
			AddConstraintViolation()
		return false
	})

	violations, err := e.ValidateValue(path.NewPath("order"), nil, SceneAll, lines)
	require.NoError(t, err)
	assert.Equal(t, []violationView{
		{Template: "{qty.positive}", Path: "order.lines[1].qty"},
		{Template: "{attr.unknown}", Path: "order.attrs[color]"},
	}, viewOf(violations))
	assert.Equal(t, "order.lines[1].qty: {qty.positive}", violations[0].Error())
}

func TestEngine_DefaultAddedAfterCustom(t *testing.T) {
	e := New()
	c := custom("c", func(_ any, ctx *validator.Context) bool {
		ctx.BuildConstraintViolationWithTemplate("a").AddNode("x").AddConstraintViolation()
		return false
	})

	violations, err := e.ValidateValue(path.Root(), 1, SceneAll, c)
	require.NoError(t, err)
	assert.Equal(t, []violationView{
		{Template: "a", Path: "x"},
		{Template: "{c}", Path: ""},
	}, viewOf(violations))
	assert.Equal(t, "{c}", violations[1].Error())
}

func TestEngine_InvalidSuppressionAggregated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := New(WithLogger(zap.New(core)))

	broken := func(name string) Constraint {
		return custom(name, func(_ any, ctx *validator.Context) bool {
			ctx.DisableDefaultConstraintViolation()
			return false
		})
	}

	violations, err := e.ValidateValue(path.NewPath("p"), "", SceneAll,
		broken("first"),
		e.Tag("required", ""),
		broken("second"),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, validator.ErrInvalidSuppressionState)
	assert.True(t, strings.Contains(err.Error(), `"first"`))
	assert.True(t, strings.Contains(err.Error(), `"second"`))
	assert.Equal(t, []violationView{{Template: "{validator.required}", Path: "p"}}, viewOf(violations))
	assert.Equal(t, 2, logs.Len())
}

func TestEngine_SceneFiltering(t *testing.T) {
	e := New()
	onCreate := e.Tag("required", "{create}")
	onCreate.Scenes = SceneCreate
	onBoth := e.Tag("required", "{both}")
	onBoth.Scenes = SceneCreate | SceneUpdate
	always := e.Tag("required", "{always}")

	tests := []struct {
		name  string
		scene Scene
		want  []string
	}{
		{"创建场景", SceneCreate, []string{"{create}", "{both}", "{always}"}},
		{"更新场景", SceneUpdate, []string{"{both}", "{always}"}},
		{"所有场景", SceneAll, []string{"{create}", "{both}", "{always}"}},
		{"无场景", SceneNone, []string{"{always}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := e.ValidateValue(path.NewPath("name"), "", tt.scene, onCreate, onBoth, always)
			require.NoError(t, err)

			got := make([]string, len(violations))
			for i, v := range violations {
				got[i] = v.MessageTemplate
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_FailFastAndLimit(t *testing.T) {
	base := path.NewPath("name")

	cfg := config.Default()
	cfg.FailFast = true
	e := New(WithConfig(cfg))
	violations, err := e.ValidateValue(base, "", SceneAll, e.Tag("required", "{a}"), e.Tag("required", "{b}"))
	require.NoError(t, err)
	assert.Equal(t, []violationView{{Template: "{a}", Path: "name"}}, viewOf(violations))

	cfg = config.Default()
	cfg.MaxViolations = 2
	e = New(WithConfig(cfg))
	many := custom("many", func(_ any, ctx *validator.Context) bool {
		for i := 0; i < 5; i++ {
			ctx.BuildConstraintViolationWithTemplate("m").AddNode("n").InIterable().AtIndex(i).AddConstraintViolation()
		}
		return false
	})
	violations, err = e.ValidateValue(base, "", SceneAll, many, e.Tag("required", "{b}"))
	require.NoError(t, err)
	assert.Equal(t, []violationView{
		{Template: "m", Path: "name.n[0]"},
		{Template: "m", Path: "name.n[1]"},
	}, viewOf(violations))
}

func TestEngine_Elements(t *testing.T) {
	e := New()
	base := path.NewPath("order")

	violations, err := e.ValidateValue(base, []string{"a", "", "c", ""}, SceneAll,
		e.Elements("tags", "required", "{tag.required}"))
	require.NoError(t, err)
	assert.Equal(t, []violationView{
		{Template: "{tag.required}", Path: "order.tags[1]"},
		{Template: "{tag.required}", Path: "order.tags[3]"},
	}, viewOf(violations))

	attrs := map[string]int{"width": 0, "height": 10, "depth": -1}
	violations, err = e.ValidateValue(base, &attrs, SceneAll, e.Elements("attrs", "gt=0", ""))
	require.NoError(t, err)
	assert.Equal(t, []violationView{
		{Template: "{validator.gt=0}", Path: "order.attrs[depth]"},
		{Template: "{validator.gt=0}", Path: "order.attrs[width]"},
	}, viewOf(violations))

	violations, err = e.ValidateValue(base, []string{"a"}, SceneAll, e.Elements("tags", "required", ""))
	require.NoError(t, err)
	assert.Nil(t, violations)
}

func TestEngine_RegisterValidation(t *testing.T) {
	e := New()
	err := e.RegisterValidation("not_admin", func(value any, _ string) bool {
		s, _ := value.(string)
		return s != "admin"
	})
	require.NoError(t, err)
	e.RegisterAlias("username", "required,not_admin")

	violations, err := e.ValidateProperty(path.Root(), "username", "admin", SceneAll, e.Tag("username", "{username.reserved}"))
	require.NoError(t, err)
	assert.Equal(t, []violationView{{Template: "{username.reserved}", Path: "username"}}, viewOf(violations))
}

func TestEngine_DebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := New(WithLogger(zap.New(core)))

	_, err := e.ValidateValue(path.NewPath("user"), "", SceneAll, e.Tag("required", ""))
	require.NoError(t, err)

	entries := logs.FilterMessage("constraint violation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "user", entries[0].ContextMap()["path"])
	assert.Equal(t, "required", entries[0].ContextMap()["constraint"])
}

func TestEngine_NilValidatorSkipped(t *testing.T) {
	e := New()
	violations, err := e.ValidateValue(path.Root(), 1, SceneAll, Constraint{
		Descriptor: validator.NewDescriptor("noop", nil),
	})
	require.NoError(t, err)
	assert.Nil(t, violations)
	assert.Same(t, e.Config(), e.Config())
}

func TestEngine_LogConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "engine.log")
	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Log.File = file
	e := New(WithConfig(cfg))

	_, err := e.ValidateValue(path.NewPath("user"), "", SceneAll, e.Tag("required", ""))
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "constraint violation")
	assert.Contains(t, string(data), `"path":"user"`)
}

func TestEngine_InvalidLogConfigFallsBack(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "verbose"
	e := New(WithConfig(cfg))
	require.NotNil(t, e.log)

	violations, err := e.ValidateValue(path.Root(), "", SceneAll, e.Tag("required", ""))
	require.NoError(t, err)
	assert.Len(t, violations, 1)
}

func TestEngine_FailFastStopsOnInvalidSuppression(t *testing.T) {
	silent := custom("silent", func(_ any, ctx *validator.Context) bool {
		ctx.DisableDefaultConstraintViolation()
		return false
	})

	tests := []struct {
		name     string
		failFast bool
		want     []violationView
	}{
		{name: "关闭快速失败时继续后续约束", failFast: false, want: []violationView{{Template: "{b}", Path: "name"}}},
		{name: "开启快速失败时立即停止", failFast: true, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.FailFast = tt.failFast
			e := New(WithConfig(cfg), WithLogger(zap.NewNop()))

			violations, err := e.ValidateValue(path.NewPath("name"), "", SceneAll, silent, e.Tag("required", "{b}"))
			require.ErrorIs(t, err, validator.ErrInvalidSuppressionState)
			if tt.want == nil {
				assert.Nil(t, violations)
				return
			}
			assert.Equal(t, tt.want, viewOf(violations))
		})
	}
}

func TestEngine_ElementsRequiresCollection(t *testing.T) {
	e := New(WithLogger(zap.NewNop()))
	c := e.Elements("tags", "required", "")

	tests := []struct {
		name  string
		value any
	}{
		{"字符串", "a,b"},
		{"结构体", struct{ Tags []string }{Tags: []string{""}}},
		{"整数指针", new(int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PanicsWithValue(t, ErrNotCollection, func() {
				_, _ = e.ValidateValue(path.Root(), tt.value, SceneAll, c)
			})
		})
	}

	var nilSlice *[]string
	for _, value := range []any{nil, nilSlice} {
		violations, err := e.ValidateValue(path.Root(), value, SceneAll, c)
		require.NoError(t, err)
		assert.Nil(t, violations, "nil 视为没有元素")
	}
}

func TestEngine_SceneFromGroups(t *testing.T) {
	e := New(
		WithLogger(zap.NewNop()),
		WithScenes(map[string]Scene{"create": SceneCreate, "update": SceneUpdate}),
	)
	grouped := func(groups any) Constraint {
		return Constraint{
			Descriptor: validator.NewDescriptor("required", types.Attributes{
				types.AttrMessage: "{required}",
				types.AttrGroups:  groups,
			}),
			Validator: ConstraintValidatorFunc(func(value any, _ *validator.Context) bool {
				return value != ""
			}),
		}
	}

	tests := []struct {
		name       string
		constraint Constraint
		scene      Scene
		violated   bool
	}{
		{"分组匹配当前场景", grouped([]string{"create"}), SceneCreate, true},
		{"分组不匹配当前场景", grouped([]string{"create"}), SceneUpdate, false},
		{"多个分组", grouped([]any{"create", "update"}), SceneUpdate, true},
		{"未注册的分组被忽略", grouped([]string{"delete", "update"}), SceneCreate, false},
		{"全部分组未注册时适用于所有场景", grouped([]string{"delete"}), SceneCreate, true},
		{"显式场景优先于分组", func() Constraint {
			c := grouped([]string{"create"})
			c.Scenes = SceneUpdate
			return c
		}(), SceneCreate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := e.ValidateValue(path.Root(), "", tt.scene, tt.constraint)
			require.NoError(t, err)
			assert.Equal(t, tt.violated, len(violations) > 0)
		})
	}
}
