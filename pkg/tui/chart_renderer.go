// Package tui 图表渲染模块
package tui

import (
	"fmt"
	"strings"
)

// brailleCell 定义盲文字符的cell结构
type brailleCell struct {
	char  int
	color string
}

// brailleDotMap 盲文点阵的映射关系 (2x4 grid)
var brailleDotMap = [4][2]int{
	{0b00000001, 0b00001000}, // (y:0, x:0), (y:0, x:1)
	{0b00000010, 0b00010000}, // (y:1, x:0), (y:1, x:1)
	{0b00000100, 0b00100000}, // (y:2, x:0), (y:2, x:1)
	{0b01000000, 0b10000000}, // (y:3, x:0), (y:3, x:1)
}

// validateChartSize 验证图表尺寸是否合理
func (t *TUI) validateChartSize(width, height int) string {
	if height < t.tuiConfig.MinChartHeight || width < t.tuiConfig.MinChartWidth {
		return "终端尺寸过小"
	}
	if width > t.tuiConfig.MaxChartSize || height > t.tuiConfig.MaxChartSize {
		return "终端尺寸过大"
	}
	return ""
}

// calculateValueRange 计算窗口内丢包率的显示上限，下限固定为0
func (t *TUI) calculateValueRange(series map[int][]lossPoint, windowStart, windowEnd uint64) (maxVal float64, errMsg string) {
	found := false
	for _, points := range series {
		for _, p := range points {
			if p.cycle < windowStart || p.cycle >= windowEnd {
				continue
			}
			found = true
			if p.loss > maxVal {
				maxVal = p.loss
			}
		}
	}

	if !found {
		return 0, "当前窗口内没有有效数据"
	}

	// 全部为0时保留一个最小刻度
	if maxVal < 1 {
		maxVal = 1
	}

	maxVal += maxVal * t.tuiConfig.ValueBufferRatio
	if maxVal > 100 {
		maxVal = 100
	}
	return maxVal, ""
}

// drawSingleTargetChart 绘制单目标丢包率曲线，调用方持有读锁
func (t *TUI) drawSingleTargetChart(id, width, height int) string {
	if id < 0 || id >= len(t.states) || len(t.states[id].history) == 0 {
		return "没有数据"
	}

	series := map[int][]lossPoint{id: t.states[id].history}
	return t.drawLossChart(series, width, height)
}

// drawMultiTargetChart 绘制所有目标的对比曲线，调用方持有读锁
func (t *TUI) drawMultiTargetChart(width, height int) string {
	series := make(map[int][]lossPoint)
	for id, st := range t.states {
		if len(st.history) > 0 {
			series[id] = st.history
		}
	}

	if len(series) == 0 {
		return "没有数据"
	}

	return t.drawLossChart(series, width, height)
}

// drawLossChart 以周期为X轴、丢包率为Y轴绘制盲文折线图
func (t *TUI) drawLossChart(series map[int][]lossPoint, width, height int) string {
	// 检查图表尺寸是否合理
	if sizeErr := t.validateChartSize(width, height); sizeErr != "" {
		return sizeErr
	}

	windowStart, windowEnd := t.getCycleWindow()

	maxVal, errMsg := t.calculateValueRange(series, windowStart, windowEnd)
	if errMsg != "" {
		return errMsg
	}

	// Y轴标签宽度
	yAxisLabelWidth := len(formatLoss(maxVal)) + 2 // +2 为│分隔符和右侧空格留出缓冲

	chartBodyHeight := height - 2 // 为X轴和周期刻度留出2行空间
	chartWidth := width - yAxisLabelWidth
	if chartBodyHeight <= 0 || chartWidth <= 0 {
		return "可绘制区域过小"
	}

	canvas := make([][]brailleCell, chartWidth)
	for i := range canvas {
		canvas[i] = make([]brailleCell, chartBodyHeight)
	}

	pixelHeight := chartBodyHeight * 4
	pixelWidth := chartWidth * 2

	// 按目标下标顺序绘制，保证颜色叠加稳定
	for id := range t.states {
		points, ok := series[id]
		if !ok {
			continue
		}
		color := t.getTargetColor(id)

		lastX, lastY := -1, -1
		for _, p := range points {
			x := cycleToX(p.cycle, windowStart, windowEnd, pixelWidth)
			if x < 0 || x >= pixelWidth {
				continue
			}

			y := int((1.0 - p.loss/maxVal) * float64(pixelHeight-1))
			if y < 0 {
				y = 0
			} else if y >= pixelHeight {
				y = pixelHeight - 1
			}

			if lastX != -1 {
				drawBrailleLine(canvas, lastX, lastY, x, y, color)
			} else {
				plotBraille(canvas, x, y, color)
			}
			lastX, lastY = x, y
		}
	}

	var lines []string

	// 预先计算Y轴标签位置
	yAxisLabelCount := 5
	if chartBodyHeight < yAxisLabelCount {
		yAxisLabelCount = chartBodyHeight
	}
	yAxisLabels := make(map[int]string)
	if yAxisLabelCount > 1 {
		for i := 0; i < yAxisLabelCount; i++ {
			normalized := float64(i) / float64(yAxisLabelCount-1)
			row := int(normalized * float64(chartBodyHeight-1))
			yAxisLabels[row] = formatLoss(maxVal - normalized*maxVal)
		}
	}

	for i := 0; i < chartBodyHeight; i++ {
		var line strings.Builder
		fmt.Fprintf(&line, "[gray]%*s[white] [gray]│[white]", yAxisLabelWidth-2, yAxisLabels[i])

		for j := 0; j < chartWidth; j++ {
			cell := canvas[j][i]
			if cell.char == 0 {
				line.WriteByte(' ')
			} else {
				line.WriteString(cell.color + string(rune(0x2800+cell.char)) + "[white]")
			}
		}
		lines = append(lines, line.String())
	}

	// X轴
	xAxisLine := fmt.Sprintf("%-*s└%s", yAxisLabelWidth-1, "", strings.Repeat("─", chartWidth))
	lines = append(lines, "[gray]"+xAxisLine+"[white]")

	// X轴周期刻度
	startLabel := fmt.Sprintf("#%d", windowStart)
	endLabel := fmt.Sprintf("#%d", windowEnd-1)
	spaceCount := chartWidth - len(startLabel) - len(endLabel)
	if spaceCount < 1 {
		spaceCount = 1
	}
	cycleLine := fmt.Sprintf("%-*s%s%*s%s", yAxisLabelWidth, "", startLabel, spaceCount, "", endLabel)
	lines = append(lines, "[gray]"+cycleLine+"[white]")

	// 确保输出不会超过可用高度，保证X轴总是可见
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// plotBraille 在高分辨率坐标 (x, y) 处点亮一个盲文点
func plotBraille(canvas [][]brailleCell, x, y int, color string) {
	canvasX, canvasY := x/2, y/4
	if canvasX < 0 || canvasX >= len(canvas) || canvasY < 0 || canvasY >= len(canvas[0]) {
		return
	}
	canvas[canvasX][canvasY].char |= brailleDotMap[y%4][x%2]
	canvas[canvasX][canvasY].color = color
}

// drawBrailleLine 使用布雷森汉姆算法在盲文画布上绘制线段
func drawBrailleLine(canvas [][]brailleCell, x1, y1, x2, y2 int, color string) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	x, y := x1, y1
	for {
		plotBraille(canvas, x, y, color)

		if x == x2 && y == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}
