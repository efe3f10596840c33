package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rainbow-me/myapp/common/env"
)

const (
	StringJSONEncoderName = "string_json"
	MessageKey            = "message"
)

// Logger is the structured logger used across the application. It embeds *zap.Logger so all the
// usual leveled methods are available, and adds context propagation helpers on top.
type Logger struct {
	*zap.Logger
}

// NewLogger wraps a zap logger. A nil zap logger yields a no-op logger.
func NewLogger(zl *zap.Logger) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{Logger: zl}
}

// Instance returns a logger backed by the zap global logger, which InitLogger callers are
// expected to install with zap.ReplaceGlobals.
func Instance() *Logger {
	return NewLogger(zap.L())
}

// With returns a child logger with the fields attached.
func (l *Logger) With(fields ...Field) *Logger {
	if len(fields) == 0 {
		return l
	}
	return NewLogger(l.Logger.With(fields...))
}

// Log writes msg at the given level.
func (l *Logger) Log(level Level, msg string, fields ...Field) {
	l.Logger.Log(zapcore.Level(level), msg, fields...)
}

type stringJSONEncoder struct {
	zapcore.Encoder
}

func newStringJSONEncoder(cfg zapcore.EncoderConfig) *stringJSONEncoder {
	return &stringJSONEncoder{zapcore.NewJSONEncoder(cfg)}
}

// NewStringJSONEncoder returns an encoder that encodes the JSON log dict as a string
// so the log processing pipeline can correctly process logs with nested JSON.
func NewStringJSONEncoder(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
	return newStringJSONEncoder(cfg), nil
}

var (
	registerOnce sync.Once
	registerErr  error
)

// InitLogger builds a zap logger configured for the given environment.
func InitLogger(environment env.Environment, zapOpts ...zap.Option) (*Logger, error) {
	var (
		config  zap.Config
		options []zap.Option
	)

	if err := env.IsEnvironmentValid(environment.String()); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	// zap keeps encoders in a process wide registry, registering twice fails
	registerOnce.Do(func() {
		registerErr = zap.RegisterEncoder(StringJSONEncoderName, NewStringJSONEncoder)
	})
	if registerErr != nil {
		return nil, fmt.Errorf("failed to register string JSON encoder: %w", registerErr)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		FunctionKey:   zapcore.OmitKey,
		MessageKey:    MessageKey,
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	switch environment {
	case env.EnvironmentLocal:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.MessageKey = MessageKey
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	case env.EnvironmentLocalDocker, env.EnvironmentDevelopment, env.EnvironmentStaging:
		// JSON logs for Datadog ingestion
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig = encoderConfig
		config.Encoding = StringJSONEncoderName

	case env.EnvironmentProduction:
		config = zap.NewProductionConfig()
		config.EncoderConfig = encoderConfig
		config.Encoding = StringJSONEncoderName
		config.Level.SetLevel(zap.InfoLevel)
	}
	options = append(options, zap.AddStacktrace(zap.ErrorLevel))
	options = append(options, zapOpts...)

	zl, err := config.Build(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewLogger(zl), nil
}
