// Package scheduler 配置定义
package scheduler

import (
	"errors"
	"time"
)

// Config 调度器的配置结构
type Config struct {
	Timeout          time.Duration // 单次探测超时
	Overhead         time.Duration // 每周期固定的处理余量
	HistorySize      int           // 滚动窗口容量
	LivenessInterval time.Duration // 存活回调的子间隔
	PollInterval     time.Duration // 可轮询探测的检查间隔
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Timeout:          950 * time.Millisecond, // 默认950ms超时
		Overhead:         150 * time.Millisecond, // 默认150ms处理余量
		HistorySize:      300,                    // 默认300个样本
		LivenessInterval: 250 * time.Millisecond, // 默认250ms存活回调
		PollInterval:     10 * time.Millisecond,  // 默认10ms轮询
	}
}

// CycleDuration 计算固定周期长度：超时 × 目标数 + 处理余量
func (c *Config) CycleDuration(targets int) time.Duration {
	return c.Timeout*time.Duration(targets) + c.Overhead
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("探测超时必须大于0")
	}

	if c.Overhead < 0 {
		return errors.New("处理余量不能为负数")
	}

	if c.HistorySize <= 0 {
		return errors.New("滚动窗口容量必须大于0")
	}

	if c.LivenessInterval <= 0 {
		return errors.New("存活回调间隔必须大于0")
	}

	if c.PollInterval <= 0 {
		return errors.New("轮询间隔必须大于0")
	}

	if c.PollInterval > c.LivenessInterval {
		return errors.New("轮询间隔不能大于存活回调间隔")
	}

	return nil
}
