// Package logger 初始化全局 zerolog 日志
package logger

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// InitLogger 创建输出到 w 的控制台日志，level 无法解析时使用 info
func InitLogger(level string, w io.Writer) *zerolog.Logger {
	if w == nil {
		w = io.Discard
	}
	consoleWriter := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	zerolog.DefaultContextLogger = &logger
	return &logger
}

// Logger 从 ctx 取出日志记录器
func Logger(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
