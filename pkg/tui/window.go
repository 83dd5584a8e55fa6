// Package tui 周期窗口管理模块
package tui

// getCycleWindow 获取图表覆盖的周期范围 [start, end)，调用方持有读锁
func (t *TUI) getCycleWindow() (start, end uint64) {
	size := uint64(t.tuiConfig.MaxHistorySize)

	if t.cycle < size {
		// 填充阶段：固定窗口，从第一个周期开始
		return 1, size + 1
	}
	// 滚动阶段：跟随最新周期的移动窗口
	return t.cycle - size + 1, t.cycle + 1
}

// cycleToX 将周期号转换为X坐标
func cycleToX(cycle, windowStart, windowEnd uint64, chartWidth int) int {
	if windowEnd <= windowStart {
		return 0
	}

	if cycle < windowStart {
		return -1 // 在窗口左边界外
	}
	if cycle >= windowEnd {
		return chartWidth // 在窗口右边界外
	}

	span := windowEnd - windowStart
	return int(float64(cycle-windowStart) / float64(span) * float64(chartWidth))
}
