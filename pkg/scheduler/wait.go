// Package scheduler 等待与轮询
package scheduler

import (
	"context"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// probe 执行单个目标的探测
// 可轮询的探测器在等待期间按子间隔触发存活回调，阻塞式探测器不触发
func (s *Scheduler) probe(target core.Target) core.ProbeOutcome {
	if s.dispatcher == nil {
		return s.prober.Probe(target, s.cfg.Timeout)
	}

	pending, err := s.dispatcher.Dispatch(target, s.cfg.Timeout)
	if err != nil {
		s.logger.Debug().Err(err).Str("target", target.String()).Msg("探测包发送失败")
		return core.ProbeSendFailed
	}

	start := s.clock.Now()
	lastBeat := start
	for {
		if outcome, done := pending.TryComplete(); done {
			return outcome
		}

		now := s.clock.Now()
		if now.Sub(start) >= s.cfg.Timeout {
			return core.ProbeFailure
		}
		if now.Sub(lastBeat) >= s.cfg.LivenessInterval {
			s.liveness()
			lastBeat = now
		}
		s.clock.Sleep(s.cfg.PollInterval)
	}
}

// idleUntil 等待到 deadline，期间按子间隔触发存活回调
func (s *Scheduler) idleUntil(ctx context.Context, deadline time.Time) error {
	lastBeat := s.clock.Now()
	for {
		now := s.clock.Now()
		if !now.Before(deadline) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if now.Sub(lastBeat) >= s.cfg.LivenessInterval {
			s.liveness()
			lastBeat = now
		}
		s.clock.Sleep(min(s.cfg.PollInterval, deadline.Sub(now)))
	}
}
