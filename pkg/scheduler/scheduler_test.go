package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingProber 阻塞式探测器，按地址返回预设结果
type blockingProber struct {
	mu       sync.Mutex
	outcomes map[string]core.ProbeOutcome
	seen     []string
}

func (b *blockingProber) Probe(target core.Target, _ time.Duration) core.ProbeOutcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = append(b.seen, target.Address)
	if outcome, ok := b.outcomes[target.Address]; ok {
		return outcome
	}
	return core.ProbeSuccess
}

func (b *blockingProber) Close() error { return nil }

func (b *blockingProber) addresses() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.seen...)
}

// pollableProber 可轮询探测器，polls<0 表示永远不完成
type pollableProber struct {
	blockingProber
	polls       int
	dispatchErr error
}

func (p *pollableProber) Dispatch(target core.Target, timeout time.Duration) (core.PendingProbe, error) {
	if p.dispatchErr != nil {
		return nil, p.dispatchErr
	}
	return &countdownPending{remaining: p.polls, outcome: p.Probe(target, timeout)}, nil
}

type countdownPending struct {
	remaining int
	outcome   core.ProbeOutcome
}

func (c *countdownPending) TryComplete() (core.ProbeOutcome, bool) {
	if c.remaining < 0 {
		return 0, false
	}
	if c.remaining == 0 {
		return c.outcome, true
	}
	c.remaining--
	return 0, false
}

// recorder 记录上报和维护的调用顺序
type recorder struct {
	mu      sync.Mutex
	events  []string
	reports []core.CycleReport
	leases  []core.LeaseStatus
	status  core.LeaseStatus
	onCycle func(report core.CycleReport)
}

func (r *recorder) ReportCycle(report core.CycleReport) {
	r.mu.Lock()
	r.events = append(r.events, "report")
	r.reports = append(r.reports, report)
	cb := r.onCycle
	r.mu.Unlock()
	if cb != nil {
		cb(report)
	}
}

func (r *recorder) ReportLease(_ uint64, status core.LeaseStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "lease")
	r.leases = append(r.leases, status)
}

func (r *recorder) Maintain(context.Context) core.LeaseStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "maintain")
	return r.status
}

func (r *recorder) snapshot() ([]string, []core.CycleReport, []core.LeaseStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...),
		append([]core.CycleReport(nil), r.reports...),
		append([]core.LeaseStatus(nil), r.leases...)
}

func threeTargets() []core.Target {
	return []core.Target{
		{ID: 0, Name: "gateway", Address: "192.0.2.1", Gateway: true},
		{ID: 1, Name: "dns-1", Address: "198.51.100.1"},
		{ID: 2, Name: "dns-2", Address: "203.0.113.1"},
	}
}

// fastConfig 使用真实时钟时的短周期配置
func fastConfig() *Config {
	return &Config{
		Timeout:          5 * time.Millisecond,
		Overhead:         5 * time.Millisecond,
		HistorySize:      4,
		LivenessInterval: 2 * time.Millisecond,
		PollInterval:     time.Millisecond,
	}
}

// driveMock 在后台执行 fn，同时不断推进模拟时钟直到 fn 返回
func driveMock(mock *clock.Mock, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	for {
		select {
		case err := <-done:
			return err
		default:
			mock.Add(10 * time.Millisecond)
		}
	}
}

func TestConfigCycleDuration(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3000*time.Millisecond, cfg.CycleDuration(3))

	cfg.PollInterval = time.Second
	assert.Error(t, cfg.Validate(), "poll interval larger than liveness interval")

	cfg = DefaultConfig()
	cfg.HistorySize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Overhead = -time.Millisecond
	assert.Error(t, cfg.Validate())
}

func TestNewValidation(t *testing.T) {
	_, err := New(threeTargets(), nil, DefaultConfig())
	assert.Error(t, err, "nil prober")

	_, err = New(nil, &blockingProber{}, DefaultConfig())
	assert.Error(t, err, "no targets")

	targets := threeTargets()
	targets[2].ID = 5
	_, err = New(targets, &blockingProber{}, DefaultConfig())
	assert.Error(t, err, "id must match position")

	s, err := New(threeTargets(), &blockingProber{}, DefaultConfig())
	require.NoError(t, err)
	assert.False(t, s.Pollable())
	assert.Equal(t, 3000*time.Millisecond, s.CycleDuration())
}

func TestNewNilConfig(t *testing.T) {
	s, err := New(threeTargets(), &blockingProber{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3000*time.Millisecond, s.CycleDuration())
	assert.Equal(t, DefaultConfig().HistorySize, s.agg.Capacity())
}

// 3个目标、950ms超时、150ms余量，所有探测立即成功时周期仍不短于3000ms
func TestScenarioCFixedCycleLength(t *testing.T) {
	mock := clock.NewMock()
	prober := &pollableProber{}
	var beats atomic.Int32

	s, err := New(threeTargets(), prober, DefaultConfig(),
		WithClock(mock),
		WithLiveness(func() { beats.Add(1) }),
	)
	require.NoError(t, err)
	require.True(t, s.Pollable())

	start := mock.Now()
	require.NoError(t, driveMock(mock, func() error { return s.RunCycle(context.Background()) }))

	elapsed := mock.Now().Sub(start)
	assert.GreaterOrEqual(t, elapsed, 3000*time.Millisecond)
	assert.Less(t, elapsed, 3500*time.Millisecond)
	assert.GreaterOrEqual(t, int(beats.Load()), 8, "liveness should fire during the idle tail")

	for id := 0; id < 3; id++ {
		assert.Equal(t, 0.0, s.Loss(id))
	}
}

// 可轮询探测一直不完成时按超时记为丢包，等待期间触发存活回调
func TestPollTimeoutRecordsLoss(t *testing.T) {
	mock := clock.NewMock()
	prober := &pollableProber{polls: -1}
	var beats atomic.Int32
	rec := &recorder{}

	s, err := New(threeTargets(), prober, DefaultConfig(),
		WithClock(mock),
		WithReporter(rec),
		WithLiveness(func() { beats.Add(1) }),
	)
	require.NoError(t, err)

	start := mock.Now()
	require.NoError(t, driveMock(mock, func() error { return s.RunCycle(context.Background()) }))

	assert.GreaterOrEqual(t, mock.Now().Sub(start), 3000*time.Millisecond)
	assert.GreaterOrEqual(t, int(beats.Load()), 6, "probes waiting 950ms each at a 250ms sub-interval")

	_, reports, _ := rec.snapshot()
	require.Len(t, reports, 1)
	for _, tr := range reports[0].Targets {
		assert.Equal(t, core.ProbeFailure, tr.Outcome)
		assert.Equal(t, 100.0, tr.Loss)
		assert.Equal(t, 1, tr.Samples)
	}
	assert.GreaterOrEqual(t, reports[0].Duration, 3*950*time.Millisecond)
}

// 探测包无法发出时记为丢包而不是崩溃
func TestScenarioDSendFailed(t *testing.T) {
	rec := &recorder{}
	prober := &blockingProber{outcomes: map[string]core.ProbeOutcome{
		"198.51.100.1": core.ProbeSendFailed,
	}}

	s, err := New(threeTargets(), prober, fastConfig(), WithReporter(rec))
	require.NoError(t, err)
	require.NoError(t, s.RunCycle(context.Background()))

	assert.Equal(t, 0.0, s.Loss(0))
	assert.Equal(t, 100.0, s.Loss(1))
	assert.Equal(t, 0.0, s.Loss(2))

	_, reports, _ := rec.snapshot()
	require.Len(t, reports, 1)
	assert.Equal(t, core.ProbeSendFailed, reports[0].Targets[1].Outcome)
}

func TestDispatchErrorIsSendFailed(t *testing.T) {
	prober := &pollableProber{dispatchErr: errors.New("network unreachable")}

	s, err := New(threeTargets(), prober, fastConfig())
	require.NoError(t, err)
	require.NoError(t, s.RunCycle(context.Background()))

	for id := 0; id < 3; id++ {
		assert.Equal(t, 100.0, s.Loss(id))
	}
}

// 每个周期的调用顺序：依次探测、上报、维护、上报维护状态
func TestCycleOrder(t *testing.T) {
	rec := &recorder{status: core.LeaseRenewOK}
	prober := &blockingProber{}

	s, err := New(threeTargets(), prober, fastConfig(), WithReporter(rec), WithMaintainer(rec))
	require.NoError(t, err)
	require.NoError(t, s.RunCycle(context.Background()))

	assert.Equal(t, []string{"192.0.2.1", "198.51.100.1", "203.0.113.1"}, prober.addresses())

	events, reports, leases := rec.snapshot()
	assert.Equal(t, []string{"report", "maintain", "lease"}, events)
	assert.Equal(t, []core.LeaseStatus{core.LeaseRenewOK}, leases)
	require.Len(t, reports, 1)
	assert.Equal(t, uint64(1), reports[0].Cycle)
	assert.Equal(t, 4, reports[0].Targets[0].Capacity)
}

// 未知状态码也只上报，不中断循环
func TestUnknownLeaseStatusDoesNotHalt(t *testing.T) {
	rec := &recorder{status: core.LeaseStatus(9)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec.onCycle = func(report core.CycleReport) {
		if report.Cycle == 3 {
			cancel()
		}
	}

	s, err := New(threeTargets(), &blockingProber{}, fastConfig(), WithReporter(rec), WithMaintainer(rec))
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))

	_, reports, leases := rec.snapshot()
	assert.Len(t, reports, 3)
	assert.Len(t, leases, 3)
	assert.Equal(t, "Unknown(9)", leases[2].String())
}

func TestRunCycleAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &blockingProber{}
	s, err := New(threeTargets(), prober, fastConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, s.RunCycle(ctx), context.Canceled)
	assert.Empty(t, prober.addresses(), "no probe should be dispatched after cancellation")
}

// 滚动窗口在多个周期后按容量覆盖
func TestRollingWindowAcrossCycles(t *testing.T) {
	prober := &blockingProber{outcomes: map[string]core.ProbeOutcome{"192.0.2.1": core.ProbeFailure}}
	s, err := New(threeTargets(), prober, fastConfig())
	require.NoError(t, err)

	// 容量为4：前4个周期网关全部丢包
	for i := 0; i < 4; i++ {
		require.NoError(t, s.RunCycle(context.Background()))
	}
	assert.Equal(t, 100.0, s.Loss(0))

	// 恢复后逐个覆盖旧样本
	prober.mu.Lock()
	prober.outcomes = nil
	prober.mu.Unlock()

	require.NoError(t, s.RunCycle(context.Background()))
	assert.Equal(t, 75.0, s.Loss(0))
	require.NoError(t, s.RunCycle(context.Background()))
	assert.Equal(t, 50.0, s.Loss(0))
}

func TestRebind(t *testing.T) {
	prober := &blockingProber{}
	s, err := New(threeTargets(), prober, fastConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Rebind(7, "10.0.0.1"), ErrUnknownTarget)
	assert.Error(t, s.Rebind(0, ""))

	require.NoError(t, s.Rebind(0, "10.0.0.1"))
	assert.Equal(t, "10.0.0.1", s.Targets()[0].Address)

	require.NoError(t, s.RunCycle(context.Background()))
	assert.Equal(t, "10.0.0.1", prober.addresses()[0])
}
