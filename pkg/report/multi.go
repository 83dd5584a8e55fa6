package report

import "github.com/Kevin-Rudy/lossping/pkg/core"

// Multi 将结果依次转发给多个上报器
type Multi []core.Reporter

// NewMulti 组合多个上报器，忽略 nil
func NewMulti(reporters ...core.Reporter) Multi {
	m := make(Multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

// ReportCycle 实现 core.Reporter
func (m Multi) ReportCycle(report core.CycleReport) {
	for _, r := range m {
		r.ReportCycle(report)
	}
}

// ReportLease 实现 core.Reporter
func (m Multi) ReportLease(cycle uint64, status core.LeaseStatus) {
	for _, r := range m {
		r.ReportLease(cycle, status)
	}
}
