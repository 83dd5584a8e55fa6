// Package scheduler 选项模式支持
package scheduler

import (
	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Option 调度器选项函数类型
type Option func(*Scheduler)

// WithClock 设置时钟，测试中传入 clock.NewMock()
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithReporter 设置上报层
func WithReporter(r core.Reporter) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithMaintainer 设置链路维护协作者
func WithMaintainer(m core.Maintainer) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.maintainer = m
		}
	}
}

// WithLiveness 设置存活回调
func WithLiveness(f core.LivenessFunc) Option {
	return func(s *Scheduler) {
		if f != nil {
			s.liveness = f
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}
