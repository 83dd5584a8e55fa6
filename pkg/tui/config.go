// Package tui 配置定义
package tui

import (
	"errors"
	"time"
)

// Config TUI组件的配置结构
type Config struct {
	RefreshInterval  time.Duration // UI刷新间隔
	MaxHistorySize   int           // 图表保留的周期数
	StripSize        int           // 最近结果条的长度
	MinChartWidth    int           // 最小图表宽度
	MinChartHeight   int           // 最小图表高度
	ValueBufferRatio float64       // 值缓冲比例
	MaxChartSize     int           // 最大图表尺寸（防止极端值）
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:  200 * time.Millisecond, // 默认200ms刷新
		MaxHistorySize:   150,                    // 默认150个周期
		StripSize:        60,                     // 默认显示最近60次结果
		MinChartWidth:    20,                     // 最小图表宽度
		MinChartHeight:   5,                      // 最小图表高度
		ValueBufferRatio: 0.1,                    // 10%缓冲
		MaxChartSize:     1000,                   // 最大图表尺寸
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("UI刷新间隔必须大于0")
	}

	if c.RefreshInterval < 10*time.Millisecond {
		return errors.New("UI刷新间隔不能小于10ms")
	}

	if c.MaxHistorySize < 10 {
		return errors.New("图表周期数不能小于10")
	}

	if c.MaxHistorySize > 1000 {
		return errors.New("图表周期数不能超过1000")
	}

	if c.StripSize <= 0 {
		return errors.New("结果条长度必须大于0")
	}

	if c.MinChartWidth <= 0 {
		return errors.New("最小图表宽度必须大于0")
	}

	if c.MinChartHeight <= 0 {
		return errors.New("最小图表高度必须大于0")
	}

	if c.ValueBufferRatio < 0 {
		return errors.New("值缓冲比例不能为负数")
	}

	if c.MaxChartSize <= 0 {
		return errors.New("最大图表尺寸必须大于0")
	}

	return nil
}
