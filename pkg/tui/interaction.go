// Package tui 交互控制模块
package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// navThrottle 导航事件频率控制：连续 threshold 次事件后休息 rest
type navThrottle struct {
	counter   int
	resting   bool
	lastEvent time.Time
}

const (
	navigationEventThreshold = 5                      // 5次事件后休息
	navigationRestDuration   = 100 * time.Millisecond // 休息100ms
)

// allow 判断是否应该处理导航事件
func (n *navThrottle) allow(now time.Time) bool {
	if !n.resting {
		return true
	}
	if now.Sub(n.lastEvent) >= navigationRestDuration {
		n.resting = false
		n.counter = 0
		return true
	}
	return false
}

// record 记录导航事件
func (n *navThrottle) record(now time.Time) {
	n.counter++
	n.lastEvent = now
	if n.counter >= navigationEventThreshold {
		n.resting = true
	}
}

// setupKeyBindings 设置键盘绑定
func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			t.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				t.Stop()
				return nil
			}
		case tcell.KeyUp:
			if now := time.Now(); t.nav.allow(now) {
				t.navigateUp()
				t.nav.record(now)
			}
			return nil
		case tcell.KeyDown:
			if now := time.Now(); t.nav.allow(now) {
				t.navigateDown()
				t.nav.record(now)
			}
			return nil
		}
		return event
	})
}

// navigateUp 向上导航
func (t *TUI) navigateUp() {
	if len(t.states) == 0 {
		return
	}

	if t.selectedRow == -1 {
		// 从全选状态按上键，选择最后一个条目
		t.selectedRow = len(t.states) - 1
	} else if t.selectedRow > 0 {
		t.selectedRow--
	} else {
		// 在第一个条目时按上键，返回全选状态
		t.selectedRow = -1
	}

	if !t.testMode {
		t.updateSelection()
		t.updateChart()
	}
}

// navigateDown 向下导航
func (t *TUI) navigateDown() {
	if len(t.states) == 0 {
		return
	}

	if t.selectedRow == -1 {
		// 从全选状态按下键，选择第一个条目
		t.selectedRow = 0
	} else if t.selectedRow < len(t.states)-1 {
		t.selectedRow++
	} else {
		// 在最后一个条目时按下键，返回全选状态
		t.selectedRow = -1
	}

	if !t.testMode {
		t.updateSelection()
		t.updateChart()
	}
}

// updateSelection 更新行选择状态
func (t *TUI) updateSelection() {
	if t.testMode || len(t.rowFlexes) == 0 {
		return
	}

	for i, rowFlex := range t.rowFlexes {
		color := tcell.ColorDefault
		if i > 0 && t.selectedRow == i-1 { // -1 因为表头行占用了索引0
			color = tcell.ColorDarkCyan
		}
		for j := 0; j < rowFlex.GetItemCount(); j++ {
			if textView, ok := rowFlex.GetItem(j).(*tview.TextView); ok {
				textView.SetBackgroundColor(color)
			}
		}
	}
}
