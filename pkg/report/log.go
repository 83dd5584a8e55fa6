// Package report 实现探测周期结果的上报层
package report

import (
	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/rs/zerolog"
)

// LogReporter 将每个周期的结果写入结构化日志
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter 创建日志上报器
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// ReportCycle 实现 core.Reporter，每个周期一条日志，按目标名分组
func (r *LogReporter) ReportCycle(report core.CycleReport) {
	event := r.logger.Info().
		Uint64("cycle", report.Cycle).
		Dur("probe_time", report.Duration)

	for _, t := range report.Targets {
		event = event.Dict(t.Target.Name, zerolog.Dict().
			Str("address", t.Target.Address).
			Float64("loss", t.Loss).
			Int("samples", t.Samples).
			Stringer("outcome", t.Outcome))
	}
	event.Msg("周期完成")
}

// ReportLease 实现 core.Reporter
func (r *LogReporter) ReportLease(cycle uint64, status core.LeaseStatus) {
	var event *zerolog.Event
	switch {
	case status == core.LeaseNone:
		event = r.logger.Debug()
	case status.Failed():
		event = r.logger.Warn()
	default:
		event = r.logger.Info()
	}
	event.Uint64("cycle", cycle).
		Int("code", int(status)).
		Stringer("lease", status).
		Msg("链路维护状态")
}
