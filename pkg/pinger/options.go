// Package pinger 选项模式支持
package pinger

import (
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// Option 配置选项函数类型
type Option func(*Config)

// WithIPVersion 设置IP版本
func WithIPVersion(version int) Option {
	return func(c *Config) {
		c.IPVersion = version
	}
}

// WithTimeout 设置超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithEngine 设置探测引擎
func WithEngine(engine string) Option {
	return func(c *Config) {
		c.Engine = engine
	}
}

// WithPrivileged 设置probing引擎是否使用原始套接字
func WithPrivileged(privileged bool) Option {
	return func(c *Config) {
		c.Privileged = privileged
	}
}

// NewProberWithOptions 使用选项模式创建探测器
func NewProberWithOptions(opts ...Option) (core.Prober, error) {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return NewProber(config)
}
