package main

import (
	"fmt"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/pinger"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

// createCliApp 创建CLI应用实例
func createCliApp() *cli.App {
	flags := createCliFlags()

	app := &cli.App{
		Name:    AppName,
		Version: AppVersion,
		Usage:   AppDesc,
		Flags:   flags,
		Action:  runApp,
		// 命令行参数优先，未设置的参数从 --config 指定的YAML文件读取
		Before:    altsrc.InitInputSourceWithContext(flags, altsrc.NewYamlSourceFromFlagFunc("config")),
		ArgsUsage: " ",
	}

	// 添加版本子命令
	app.Commands = createCommands()

	return app
}

// createCliFlags 创建CLI参数定义
func createCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML配置文件路径，键名与长参数名一致",
		},
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "gateway",
			Aliases: []string{"g"},
			Usage:   "网关地址，留空则从路由表读取默认网关",
		}),
		altsrc.NewStringSliceFlag(&cli.StringSliceFlag{
			Name:    "target",
			Aliases: []string{"T"},
			Value:   cli.NewStringSlice(defaultTargets...),
			Usage:   "外部探测目标，可重复指定",
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:  "6",
			Usage: "使用IPv6进行探测",
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Value:   950 * time.Millisecond,
			Usage:   "单次探测超时 (例如: 950ms, 1s)",
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:  "overhead",
			Value: 150 * time.Millisecond,
			Usage: "每周期固定处理余量，周期长度 = 超时 × 目标数 + 余量",
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "history",
			Aliases: []string{"b"},
			Value:   300,
			Usage:   "丢包率滚动窗口的样本数",
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:  "liveness",
			Value: 250 * time.Millisecond,
			Usage: "等待期间存活回调的子间隔",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "engine",
			Value: pinger.EngineAuto,
			Usage: fmt.Sprintf("探测引擎: %s 或 %s", pinger.EngineAuto, pinger.EngineProbing),
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:  "privileged",
			Usage: "probing引擎使用原始套接字",
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:  "no-tui",
			Usage: "不启动终端界面，结果只写入日志",
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "refresh-rate",
			Aliases: []string{"r"},
			Value:   200 * time.Millisecond,
			Usage:   "UI刷新频率 (例如: 100ms, 500ms)",
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:  "chart-cycles",
			Value: 150,
			Usage: "图表保留的周期数",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Prometheus指标监听地址 (例如: :9108)，留空则不启用",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "log-file",
			Usage: "日志文件路径，TUI模式下未指定则丢弃日志",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "日志级别: debug, info, warn, error",
		}),
	}
}

// createCommands 创建子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "显示详细版本信息",
			Action: func(c *cli.Context) error {
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				fmt.Printf("描述: %s\n", AppDesc)
				fmt.Printf("系统: %s\n", pinger.GetOSName())
				fmt.Printf("实现: %s\n", pinger.GetImplementationType())
				return nil
			},
		},
	}
}
