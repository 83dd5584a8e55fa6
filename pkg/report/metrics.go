package report

import (
	"net/http"
	"strconv"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lossping"

// MetricsReporter 以 Prometheus 指标形式暴露周期结果
type MetricsReporter struct {
	gatherer prometheus.Gatherer

	addresses map[string]string // 目标名 -> 当前丢包率序列的地址标签

	loss          *prometheus.GaugeVec
	probes        *prometheus.CounterVec
	cycles        prometheus.Counter
	cycleDuration prometheus.Gauge
	lease         prometheus.Gauge
}

// NewMetricsReporter 创建指标上报器并注册到独立的 Registry
func NewMetricsReporter() (*MetricsReporter, error) {
	reg := prometheus.NewRegistry()
	return NewMetricsReporterWith(reg, reg)
}

// NewMetricsReporterWith 注册到指定的 Registerer，Handler 从 gatherer 读取
func NewMetricsReporterWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*MetricsReporter, error) {
	m := &MetricsReporter{
		gatherer:  gatherer,
		addresses: make(map[string]string),
		loss: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_loss_percent",
			Help:      "Rolling packet loss percentage per target.",
		}, []string{"target", "address"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Probes sent per target, by outcome.",
		}, []string{"target", "outcome"}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed probe cycles.",
		}),
		cycleDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent probing all targets in the last cycle.",
		}),
		lease: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lease_status",
			Help:      "Last link maintenance status code (0 none, 1 renew failed, 2 renew ok, 3 rebind failed, 4 rebind ok).",
		}),
	}

	for _, c := range []prometheus.Collector{m.loss, m.probes, m.cycles, m.cycleDuration, m.lease} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ReportCycle 实现 core.Reporter
func (m *MetricsReporter) ReportCycle(report core.CycleReport) {
	for _, t := range report.Targets {
		name := t.Target.Name
		if name == "" {
			name = strconv.Itoa(t.Target.ID)
		}
		// 地址重新绑定后删除旧序列，每个目标只保留一条丢包率序列
		if old, ok := m.addresses[name]; ok && old != t.Target.Address {
			m.loss.DeleteLabelValues(name, old)
		}
		m.addresses[name] = t.Target.Address
		m.loss.WithLabelValues(name, t.Target.Address).Set(t.Loss)
		m.probes.WithLabelValues(name, t.Outcome.String()).Inc()
	}
	m.cycles.Inc()
	m.cycleDuration.Set(report.Duration.Seconds())
}

// ReportLease 实现 core.Reporter
func (m *MetricsReporter) ReportLease(_ uint64, status core.LeaseStatus) {
	m.lease.Set(float64(status))
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *MetricsReporter) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
