package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"katydid-common-validation/pkg/logger"
)

// envPrefix 环境变量前缀，如 VALIDATOR_FAIL_FAST、VALIDATOR_LOG_LEVEL
const envPrefix = "VALIDATOR"

// 配置键
const (
	KeyFailFast      = "fail_fast"
	KeyMaxViolations = "max_violations"
	KeyMessages      = "messages"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age_days"
	KeyLogCompress   = "log.compress"
)

// ErrInvalidMaxViolations 违规数量上限为负数
var ErrInvalidMaxViolations = errors.New("max_violations must not be negative")

// Config 验证引擎配置
type Config struct {
	// FailFast 遇到第一个失败的约束即停止
	FailFast bool `mapstructure:"fail_fast"`
	// MaxViolations 单次验证返回的最大违规数量，0 表示不限制
	MaxViolations int `mapstructure:"max_violations"`
	// Messages 标签约束的默认消息模板，key 为验证标签
	Messages map[string]string `mapstructure:"messages"`
	// Log 日志配置
	Log logger.Config `mapstructure:"log"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		MaxViolations: 100,
		Messages:      map[string]string{},
		Log:           logger.DefaultConfig(),
	}
}

// Load 加载配置
// 优先级：环境变量 > 配置文件 > 默认值；file 为空时只读取环境变量
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read validator config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode validator config: %w", err)
	}
	if cfg.Messages == nil {
		cfg.Messages = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.MaxViolations < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxViolations, c.MaxViolations)
	}
	return nil
}

// MessageFor 返回标签对应的默认消息模板
// 未配置时使用 {validator.<tag>} 形式的模板键
func (c *Config) MessageFor(tag string) string {
	if msg, ok := c.Messages[tag]; ok && msg != "" {
		return msg
	}
	return "{validator." + tag + "}"
}

// setDefaults 注册默认值，AutomaticEnv 只对已知键生效
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault(KeyFailFast, def.FailFast)
	v.SetDefault(KeyMaxViolations, def.MaxViolations)
	v.SetDefault(KeyLogLevel, def.Log.Level)
	v.SetDefault(KeyLogFormat, def.Log.Format)
	v.SetDefault(KeyLogFile, def.Log.File)
	v.SetDefault(KeyLogMaxSize, def.Log.MaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, def.Log.MaxBackups)
	v.SetDefault(KeyLogMaxAge, def.Log.MaxAgeDays)
	v.SetDefault(KeyLogCompress, def.Log.Compress)
}
