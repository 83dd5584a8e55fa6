// Package tui 提供按探测周期刷新的终端用户界面
// 显示每个目标的滚动丢包率、最近探测结果和丢包率曲线
package tui

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/rivo/tview"
)

// TUI 主界面结构，同时实现 core.Reporter
type TUI struct {
	app       *tview.Application
	header    *tview.TextView
	rowFlexes []*tview.Flex
	chart     *tview.TextView
	flex      *tview.Flex

	// 配置信息
	tuiConfig *Config

	// 数据存储
	states  []*targetState
	cycle   uint64           // 最近一次上报的周期号
	lease   core.LeaseStatus // 最近一次链路维护状态
	statsMu sync.RWMutex

	// 存活回调计数，驱动标题栏的转动指示
	beats atomic.Uint64

	// 界面状态
	selectedRow int // -1 表示全选
	nav         navThrottle

	// 控制
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}

	// 测试模式标志
	testMode bool
}

// NewTUI 创建新的TUI实例
func NewTUI(targets []core.Target, tuiConfig *Config) *TUI {
	tui := newTUI(targets, tuiConfig)
	tui.app = tview.NewApplication()
	tui.header = tview.NewTextView()
	tui.chart = tview.NewTextView()

	tui.setupUI()
	tui.setupKeyBindings()

	return tui
}

// NewTUIForTest 创建用于测试的TUI实例（不初始化图形组件）
func NewTUIForTest(targets []core.Target, tuiConfig *Config) *TUI {
	tui := newTUI(targets, tuiConfig)
	tui.testMode = true
	return tui
}

func newTUI(targets []core.Target, tuiConfig *Config) *TUI {
	if tuiConfig == nil {
		tuiConfig = DefaultConfig()
	}

	states := make([]*targetState, len(targets))
	for i, target := range targets {
		states[i] = &targetState{target: target}
	}

	return &TUI{
		tuiConfig:   tuiConfig,
		states:      states,
		selectedRow: -1, // 默认全选状态
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Run 启动TUI界面，并在后台执行 run
// 用户退出时取消 run 的 ctx，run 返回时关闭界面
func (t *TUI) Run(run func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() {
		err := run(ctx)
		runDone <- err
		t.Stop()
	}()

	var uiErr error
	if t.testMode {
		close(t.doneChan)
		<-t.stopChan
	} else {
		// 启动数据处理goroutine
		go t.processData()

		uiErr = t.app.Run()

		// 确保清理工作完成
		t.Stop()
		<-t.doneChan
	}

	cancel()
	runErr := <-runDone
	if uiErr != nil {
		return uiErr
	}
	return runErr
}

// Stop 停止TUI界面，可重复调用
func (t *TUI) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
	})

	if !t.testMode && t.app != nil {
		t.app.Stop()
	}
}

// Liveness 存活回调，交给调度器在等待期间调用
func (t *TUI) Liveness() {
	t.beats.Add(1)
}

// ReportCycle 实现 core.Reporter
func (t *TUI) ReportCycle(report core.CycleReport) {
	t.applyReport(report)
}

// ReportLease 实现 core.Reporter
func (t *TUI) ReportLease(cycle uint64, status core.LeaseStatus) {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	t.lease = status
	if cycle > t.cycle {
		t.cycle = cycle
	}
}

// processData 定时刷新界面
func (t *TUI) processData() {
	defer close(t.doneChan)

	uiTicker := time.NewTicker(t.tuiConfig.RefreshInterval)
	defer uiTicker.Stop()

	// 初始UI刷新
	t.handleUIRefresh()

	for {
		select {
		case <-uiTicker.C:
			t.handleUIRefresh()

		case <-t.stopChan:
			return
		}
	}
}

// handleUIRefresh 处理UI刷新
func (t *TUI) handleUIRefresh() {
	if !t.testMode && t.app != nil {
		t.safeUIUpdate(func() {
			t.rebuildUI()
			t.updateChart()
		})
	}
}
