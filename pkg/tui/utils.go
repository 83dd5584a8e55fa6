// Package tui 工具函数和辅助类型
package tui

import (
	"fmt"
	"strings"

	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// spinnerFrames 标题栏的转动指示
var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// formatLoss 格式化丢包率
func formatLoss(loss float64) string {
	if loss >= 10 || loss == 0 {
		return fmt.Sprintf("%.0f%%", loss)
	}
	return fmt.Sprintf("%.1f%%", loss)
}

// formatSamples 格式化样本数/容量
func formatSamples(samples, capacity int) string {
	if capacity == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d", samples, capacity)
}

// lossColor 根据丢包率选择颜色
func lossColor(loss float64) string {
	switch {
	case loss == 0:
		return "[green]"
	case loss < 5:
		return "[yellow]"
	default:
		return "[red]"
	}
}

// outcomeCell 单次探测结果在结果条中的显示
func outcomeCell(o core.ProbeOutcome) string {
	switch o {
	case core.ProbeSuccess:
		return "[green]▮"
	case core.ProbeFailure:
		return "[red]✗"
	case core.ProbeSendFailed:
		return "[yellow]!"
	default:
		return "[gray]?"
	}
}

// formatStrip 渲染最近结果条
func formatStrip(strip []core.ProbeOutcome) string {
	if len(strip) == 0 {
		return "[gray]暂无结果[white]"
	}

	var b strings.Builder
	for _, o := range strip {
		b.WriteString(outcomeCell(o))
	}
	b.WriteString("[white]")
	return b.String()
}

// leaseColor 链路维护状态的颜色
func leaseColor(status core.LeaseStatus) string {
	switch {
	case status.Failed():
		return "[red]"
	case status == core.LeaseNone:
		return "[gray]"
	default:
		return "[green]"
	}
}

// spinner 根据存活回调次数返回当前帧
func (t *TUI) spinner() string {
	return string(spinnerFrames[t.beats.Load()%uint64(len(spinnerFrames))])
}

// getTargetColor 根据目标下标获取对应的颜色
func (t *TUI) getTargetColor(id int) string {
	colorSequence := []string{
		"[green]", "[yellow]", "[blue]", "[magenta]", "[cyan]", "[red]",
		"[orange]", "[purple]", "[lime]", "[pink]",
		"[darkcyan]", "[darkgreen]", "[darkblue]", "[darkmagenta]",
	}

	if id < 0 {
		return "[white]"
	}
	return colorSequence[id%len(colorSequence)]
}

// abs 返回整数的绝对值
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
