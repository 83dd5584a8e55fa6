// Package tui 布局管理模块
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// columnHeaders 数据列表头，目标列单独处理
var columnHeaders = []string{"地址", "丢包率", "样本", "最近"}

// setupUI 设置用户界面布局
func (t *TUI) setupUI() {
	t.header.SetDynamicColors(true)
	t.header.SetTextAlign(tview.AlignLeft)

	// 设置图表属性
	t.chart.SetWordWrap(false)
	t.chart.SetDynamicColors(true)
	t.chart.SetText("[yellow]正在初始化，等待第一个探测周期...[white]")

	// 创建主垂直布局
	t.flex = tview.NewFlex()
	t.flex.SetDirection(tview.FlexRow)

	t.updateHeader()
	t.flex.AddItem(t.header, 1, 0, false)
	t.flex.AddItem(t.chart, 0, 1, false)

	t.app.SetRoot(t.flex, true)
}

// updateHeader 刷新标题栏：转动指示、周期号、链路维护状态
func (t *TUI) updateHeader() {
	t.statsMu.RLock()
	cycle, lease := t.cycle, t.lease
	t.statsMu.RUnlock()

	t.header.SetText(fmt.Sprintf("[green]LossPing[white] %s  周期 [yellow]#%d[white]  链路 %s%s[white]  [gray](↑/↓ 选择, q 退出)[white]",
		t.spinner(), cycle, leaseColor(lease), lease))
}

// rebuildUI 重建UI布局
func (t *TUI) rebuildUI() {
	if t.testMode {
		return
	}

	t.updateHeader()

	t.statsMu.RLock()
	defer t.statsMu.RUnlock()

	// 清空主布局
	t.flex.Clear()
	t.flex.AddItem(t.header, 1, 0, false)
	t.rowFlexes = make([]*tview.Flex, 0, len(t.states)+1) // +1 为表头行

	if t.seenCount() == 0 {
		t.flex.AddItem(t.chart, 0, 1, false)
		return
	}

	headerFlex := t.createHeaderRow()
	t.flex.AddItem(headerFlex, 1, 0, false)
	t.rowFlexes = append(t.rowFlexes, headerFlex)

	// 目标顺序固定，与调度器下标一致
	for id := range t.states {
		rowFlex := t.createDataRow(id)
		t.flex.AddItem(rowFlex, 1, 0, false)
		t.rowFlexes = append(t.rowFlexes, rowFlex)
	}

	// 最后添加详情面板，占据所有剩余空间
	t.flex.AddItem(t.chart, 0, 1, false)

	t.updateSelection()
}

// createHeaderRow 创建表头行
func (t *TUI) createHeaderRow() *tview.Flex {
	headerFlex := tview.NewFlex()
	headerFlex.SetDirection(tview.FlexColumn)

	targetHeaderText := tview.NewTextView()
	targetHeaderText.SetText(fmt.Sprintf("[yellow]%-16s[white]", "目标"))
	targetHeaderText.SetDynamicColors(true)
	targetHeaderText.SetTextAlign(tview.AlignLeft)
	headerFlex.AddItem(targetHeaderText, 0, 2, false)

	for _, header := range columnHeaders {
		headerText := tview.NewTextView()
		headerText.SetText(fmt.Sprintf("[yellow]%s[white]", header))
		headerText.SetDynamicColors(true)
		headerText.SetTextAlign(tview.AlignCenter)
		headerFlex.AddItem(headerText, 0, 1, false)
	}

	return headerFlex
}

// createDataRow 创建数据行，调用方持有读锁
func (t *TUI) createDataRow(id int) *tview.Flex {
	st := t.states[id]

	rowFlex := tview.NewFlex()
	rowFlex.SetDirection(tview.FlexColumn)

	name := st.target.Name
	if st.target.Gateway {
		name += " (gw)"
	}
	targetText := tview.NewTextView()
	targetText.SetText(fmt.Sprintf("%s%-16s[white]", t.getTargetColor(id), name))
	targetText.SetDynamicColors(true)
	targetText.SetTextAlign(tview.AlignLeft)
	rowFlex.AddItem(targetText, 0, 2, false)

	cells := []string{st.target.Address, "N/A", "N/A", "N/A"}
	if st.seen {
		cells[1] = lossColor(st.loss) + formatLoss(st.loss) + "[white]"
		cells[2] = formatSamples(st.samples, st.capacity)
		cells[3] = outcomeCell(st.last) + "[white] " + st.last.String()
	}

	for _, value := range cells {
		dataText := tview.NewTextView()
		dataText.SetText(value)
		dataText.SetDynamicColors(true)
		dataText.SetTextAlign(tview.AlignCenter)
		dataText.SetTextColor(tcell.ColorWhite)
		rowFlex.AddItem(dataText, 0, 1, false)
	}

	return rowFlex
}

// updateChart 更新详情面板：选中目标时显示其结果条和曲线，全选时显示对比曲线
func (t *TUI) updateChart() {
	if t.testMode || t.chart == nil {
		return
	}

	t.statsMu.RLock()
	defer t.statsMu.RUnlock()

	if t.seenCount() == 0 {
		t.chart.SetText("[yellow]等待第一个探测周期...[white]")
		return
	}

	// 获取图表视图的实际可绘制尺寸
	_, _, width, height := t.chart.GetInnerRect()

	// 确保有合理的最小尺寸
	if width < 20 {
		width = 80
	}
	if height < 10 {
		height = 15
	}

	t.chart.SetText(t.renderDetail(width, height))
}

// renderDetail 渲染详情面板文本，调用方持有读锁
func (t *TUI) renderDetail(width, height int) string {
	if t.selectedRow < 0 || t.selectedRow >= len(t.states) {
		return "[white]全部目标丢包率\n" + t.drawMultiTargetChart(width, height-1)
	}

	st := t.states[t.selectedRow]
	strip := formatStrip(st.strip)
	return fmt.Sprintf("%s%s[white] 最近结果: %s\n%s",
		t.getTargetColor(t.selectedRow), st.target, strip,
		t.drawSingleTargetChart(t.selectedRow, width, height-1))
}

// safeUIUpdate 安全地执行UI更新操作
func (t *TUI) safeUIUpdate(updateFunc func()) {
	defer func() {
		// 应用已经停止时忽略panic
		_ = recover()
	}()
	t.app.QueueUpdateDraw(updateFunc)
}
