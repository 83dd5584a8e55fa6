// Package scheduler 实现探测周期调度
// 每个周期依次探测所有目标、记录结果、上报、执行链路维护，然后空闲等待到固定周期长度
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/Kevin-Rudy/lossping/pkg/loss"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// ErrUnknownTarget 目标下标不存在
var ErrUnknownTarget = errors.New("scheduler: 目标不存在")

// Scheduler 探测周期调度器
// 所有状态只在调用 Run/RunCycle 的goroutine上修改
type Scheduler struct {
	cfg        *Config
	targets    []core.Target
	prober     core.Prober
	dispatcher core.Dispatcher // prober 支持轮询时非空
	agg        *loss.Aggregator

	clock      clock.Clock
	reporter   core.Reporter
	maintainer core.Maintainer
	liveness   core.LivenessFunc
	logger     zerolog.Logger

	cycle    uint64
	outcomes []core.ProbeOutcome // 本周期各目标的探测结果
}

// New 创建调度器，目标下标必须与其在切片中的位置一致；cfg 为 nil 时使用默认配置
func New(targets []core.Target, prober core.Prober, cfg *Config, opts ...Option) (*Scheduler, error) {
	if prober == nil {
		return nil, errors.New("scheduler: 探测器不能为空")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	agg, err := loss.New(len(targets), cfg.HistorySize)
	if err != nil {
		return nil, err
	}

	owned := make([]core.Target, len(targets))
	for i, t := range targets {
		if t.ID != i {
			return nil, fmt.Errorf("scheduler: 目标 %s 的下标为 %d，期望 %d", t.Name, t.ID, i)
		}
		owned[i] = t
	}

	s := &Scheduler{
		cfg:        cfg,
		targets:    owned,
		prober:     prober,
		agg:        agg,
		clock:      clock.New(),
		reporter:   nopReporter{},
		maintainer: nopMaintainer{},
		liveness:   func() {},
		logger:     zerolog.Nop(),
		outcomes:   make([]core.ProbeOutcome, len(targets)),
	}
	s.dispatcher, _ = prober.(core.Dispatcher)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CycleDuration 返回固定周期长度
func (s *Scheduler) CycleDuration() time.Duration {
	return s.cfg.CycleDuration(len(s.targets))
}

// Pollable 返回探测器是否支持非阻塞轮询
func (s *Scheduler) Pollable() bool {
	return s.dispatcher != nil
}

// Targets 返回目标列表的副本
func (s *Scheduler) Targets() []core.Target {
	out := make([]core.Target, len(s.targets))
	copy(out, s.targets)
	return out
}

// Loss 返回目标当前的滚动丢包率
func (s *Scheduler) Loss(id int) float64 {
	return s.agg.Loss(id)
}

// Rebind 重新绑定目标地址（网关地址变化时由链路维护调用）
// 必须在调度goroutine上调用
func (s *Scheduler) Rebind(id int, address string) error {
	if id < 0 || id >= len(s.targets) {
		return ErrUnknownTarget
	}
	if address == "" {
		return errors.New("scheduler: 地址不能为空")
	}

	old := s.targets[id].Address
	s.targets[id].Address = address
	s.logger.Info().
		Str("target", s.targets[id].Name).
		Str("from", old).
		Str("to", address).
		Msg("目标地址已重新绑定")
	return nil
}

// Run 循环执行探测周期，直到 ctx 被取消
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().
		Int("targets", len(s.targets)).
		Dur("cycle", s.CycleDuration()).
		Bool("pollable", s.Pollable()).
		Msg("调度器启动")

	for {
		if err := s.RunCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.logger.Info().Uint64("cycles", s.cycle).Msg("调度器停止")
				return nil
			}
			return err
		}
	}
}

// RunCycle 执行一个完整周期
// 已发出的探测总会执行到完成或超时，ctx 只在空闲等待阶段生效
func (s *Scheduler) RunCycle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// CycleStart
	start := s.clock.Now()
	s.cycle++

	// ProbingTarget(i)
	for i := range s.targets {
		outcome := s.probe(s.targets[i])
		s.outcomes[i] = outcome
		s.agg.Record(i, outcome.Lost())

		if outcome != core.ProbeSuccess {
			s.logger.Debug().
				Uint64("cycle", s.cycle).
				Str("target", s.targets[i].String()).
				Stringer("outcome", outcome).
				Msg("探测失败")
		}
	}

	// AggregateAndReport
	report := s.buildReport(start)
	s.reporter.ReportCycle(report)

	// ExternalMaintenance
	status := s.maintainer.Maintain(ctx)
	if status.Failed() {
		s.logger.Warn().Uint64("cycle", s.cycle).Stringer("lease", status).Msg("链路维护异常")
	}
	s.reporter.ReportLease(s.cycle, status)

	// IdleWait
	return s.idleUntil(ctx, start.Add(s.CycleDuration()))
}

// buildReport 汇总所有目标当前的丢包率
func (s *Scheduler) buildReport(start time.Time) core.CycleReport {
	report := core.CycleReport{
		Cycle:    s.cycle,
		Started:  start,
		Duration: s.clock.Since(start),
		Targets:  make([]core.TargetReport, len(s.targets)),
	}
	for i, t := range s.targets {
		report.Targets[i] = core.TargetReport{
			Target:   t,
			Outcome:  s.outcomes[i],
			Loss:     s.agg.Loss(i),
			Samples:  s.agg.Samples(i),
			Capacity: s.agg.Capacity(),
		}
	}
	return report
}

// nopReporter 未配置上报层时使用
type nopReporter struct{}

func (nopReporter) ReportCycle(core.CycleReport)         {}
func (nopReporter) ReportLease(uint64, core.LeaseStatus) {}

// nopMaintainer 未配置链路维护时使用
type nopMaintainer struct{}

func (nopMaintainer) Maintain(context.Context) core.LeaseStatus { return core.LeaseNone }
