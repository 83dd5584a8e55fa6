// Package tui 数据处理模块
package tui

import (
	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// targetState 单个目标的显示状态
type targetState struct {
	target   core.Target
	loss     float64
	samples  int
	capacity int
	last     core.ProbeOutcome
	seen     bool // 是否收到过至少一个周期的结果

	history []lossPoint         // 按周期递增排列的丢包率
	strip   []core.ProbeOutcome // 最近的探测结果，最新的在末尾
}

// lossPoint 某个周期结束时的丢包率
type lossPoint struct {
	cycle uint64
	loss  float64
}

// applyReport 将一个周期的结果写入各目标状态
func (t *TUI) applyReport(report core.CycleReport) {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()

	if report.Cycle > t.cycle {
		t.cycle = report.Cycle
	}

	for _, tr := range report.Targets {
		id := tr.Target.ID
		if id < 0 || id >= len(t.states) {
			continue
		}

		st := t.states[id]
		st.target = tr.Target // 地址可能已重新绑定
		st.loss = tr.Loss
		st.samples = tr.Samples
		st.capacity = tr.Capacity
		st.last = tr.Outcome
		st.seen = true

		st.history = append(st.history, lossPoint{cycle: report.Cycle, loss: tr.Loss})
		st.strip = append(st.strip, tr.Outcome)

		// 维护缓冲区大小
		st.history = dropOldest(st.history, t.tuiConfig.MaxHistorySize)
		st.strip = dropOldest(st.strip, t.tuiConfig.StripSize)
	}
}

// dropOldest 只保留最后 limit 个元素
func dropOldest[T any](s []T, limit int) []T {
	if len(s) <= limit {
		return s
	}
	n := copy(s, s[len(s)-limit:])
	return s[:n]
}

// seenCount 已收到结果的目标数，调用方持有读锁
func (t *TUI) seenCount() int {
	n := 0
	for _, st := range t.states {
		if st.seen {
			n++
		}
	}
	return n
}
