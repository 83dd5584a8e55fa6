package main

import (
	"fmt"
	"strings"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/Kevin-Rudy/lossping/pkg/pinger"
	"github.com/Kevin-Rudy/lossping/pkg/scheduler"
	"github.com/Kevin-Rudy/lossping/pkg/tui"
	"github.com/urfave/cli/v2"
)

// defaultTargets 默认的两个外部目标
var defaultTargets = []string{"8.8.8.8", "1.1.1.1"}

// AppConfig 应用层配置聚合
type AppConfig struct {
	PingerConfig    *pinger.Config
	SchedulerConfig *scheduler.Config
	TUIConfig       *tui.Config

	Gateway string   // 为空表示启动时从路由表读取
	Extra   []string // 外部目标地址

	NoTUI       bool
	MetricsAddr string
	LogFile     string
	LogLevel    string
}

// buildConfigFromCLI 从命令行参数构建配置
func buildConfigFromCLI(c *cli.Context) *AppConfig {
	// 构建 pinger 配置
	pingerConfig := pinger.DefaultConfig()
	if c.Bool("6") {
		pingerConfig.IPVersion = 6
	}
	if c.IsSet("timeout") {
		pingerConfig.Timeout = c.Duration("timeout")
	}
	if c.IsSet("engine") {
		pingerConfig.Engine = c.String("engine")
	}
	pingerConfig.Privileged = c.Bool("privileged")

	// 构建调度器配置，探测超时与 pinger 保持一致
	schedulerConfig := scheduler.DefaultConfig()
	schedulerConfig.Timeout = pingerConfig.Timeout
	if c.IsSet("overhead") {
		schedulerConfig.Overhead = c.Duration("overhead")
	}
	if c.IsSet("history") {
		schedulerConfig.HistorySize = c.Int("history")
	}
	if c.IsSet("liveness") {
		schedulerConfig.LivenessInterval = c.Duration("liveness")
	}

	// 构建 TUI 配置
	var tuiOpts []tui.Option
	if c.IsSet("refresh-rate") {
		tuiOpts = append(tuiOpts, tui.WithRefreshInterval(c.Duration("refresh-rate")))
	}
	if c.IsSet("chart-cycles") {
		tuiOpts = append(tuiOpts, tui.WithHistorySize(c.Int("chart-cycles")))
	}
	tuiConfig := tui.NewConfigWithOptions(tuiOpts...)

	return &AppConfig{
		PingerConfig:    pingerConfig,
		SchedulerConfig: schedulerConfig,
		TUIConfig:       tuiConfig,
		Gateway:         strings.TrimSpace(c.String("gateway")),
		Extra:           c.StringSlice("target"),
		NoTUI:           c.Bool("no-tui"),
		MetricsAddr:     c.String("metrics-addr"),
		LogFile:         c.String("log-file"),
		LogLevel:        c.String("log-level"),
	}
}

// buildTargets 组装目标列表，下标0固定为网关
func buildTargets(gateway string, extra []string) []core.Target {
	targets := []core.Target{{ID: 0, Name: "gateway", Address: gateway, Gateway: true}}

	for _, addr := range extra {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		targets = append(targets, core.Target{
			ID:      len(targets),
			Name:    addr,
			Address: addr,
		})
	}
	return targets
}

// validateConfig 验证配置的合理性
func validateConfig(config *AppConfig) error {
	// 验证 pinger 配置
	if err := config.PingerConfig.Validate(); err != nil {
		return fmt.Errorf("pinger配置错误: %w", err)
	}

	// 验证调度器配置
	if err := config.SchedulerConfig.Validate(); err != nil {
		return fmt.Errorf("调度器配置错误: %w", err)
	}

	// 验证 TUI 配置
	if !config.NoTUI {
		if err := config.TUIConfig.Validate(); err != nil {
			return fmt.Errorf("tui配置错误: %w", err)
		}
	}

	return nil
}
