package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志输出格式
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format 输出格式：json 或 console
	Format string `mapstructure:"format"`
	// File 日志文件路径，为空时输出到标准输出
	File string `mapstructure:"file"`
	// MaxSizeMB 单个日志文件的最大尺寸（MB）
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups 保留的旧日志文件数量
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays 旧日志文件保留天数
	MaxAgeDays int `mapstructure:"max_age_days"`
	// Compress 是否压缩旧日志文件
	Compress bool `mapstructure:"compress"`
}

// DefaultConfig 默认日志配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     FormatJSON,
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// New 根据配置创建 zap 日志记录器
// File 非空时使用 lumberjack 按大小滚动写入文件
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case FormatJSON, "":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case FormatConsole:
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer(cfg)), level)
	return zap.New(core, zap.AddCaller()), nil
}

// Nop 不输出任何日志的记录器
func Nop() *zap.Logger {
	return zap.NewNop()
}

// writer 选择日志输出目标
func writer(cfg Config) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
