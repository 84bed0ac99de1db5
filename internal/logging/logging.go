// Package logging builds the service's zap logger.
package logging

import (
    "os"
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// Config holds logger settings.
type Config struct {
    Level  string // debug, info, warn, error
    Format string // json, console
}

// New creates a logger writing to stdout.
func New(cfg Config) *zap.Logger {
    encCfg := zapcore.EncoderConfig{
        TimeKey:        "time",
        LevelKey:       "level",
        NameKey:        "logger",
        CallerKey:      "caller",
        FunctionKey:    zapcore.OmitKey,
        MessageKey:     "msg",
        StacktraceKey:  "stacktrace",
        LineEnding:     zapcore.DefaultLineEnding,
        EncodeLevel:    zapcore.LowercaseLevelEncoder,
        EncodeTime:     zapcore.ISO8601TimeEncoder,
        EncodeDuration: zapcore.MillisDurationEncoder,
        EncodeCaller:   zapcore.ShortCallerEncoder,
    }

    var enc zapcore.Encoder
    if strings.EqualFold(cfg.Format, "console") {
        encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
        enc = zapcore.NewConsoleEncoder(encCfg)
    } else {
        enc = zapcore.NewJSONEncoder(encCfg)
    }

    core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), ParseLevel(cfg.Level))
    return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
    switch strings.ToLower(strings.TrimSpace(level)) {
    case "debug":
        return zapcore.DebugLevel
    case "warn", "warning":
        return zapcore.WarnLevel
    case "error":
        return zapcore.ErrorLevel
    default:
        return zapcore.InfoLevel
    }
}
