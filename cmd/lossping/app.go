package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/Kevin-Rudy/lossping/pkg/lease"
	"github.com/Kevin-Rudy/lossping/pkg/logger"
	"github.com/Kevin-Rudy/lossping/pkg/pinger"
	"github.com/Kevin-Rudy/lossping/pkg/report"
	"github.com/Kevin-Rudy/lossping/pkg/scheduler"
	"github.com/Kevin-Rudy/lossping/pkg/tui"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// runApp 主要应用逻辑处理函数
func runApp(c *cli.Context) error {
	if c.NArg() > 0 {
		return cli.Exit("错误: 不接受位置参数，请使用 --target 指定外部目标", 1)
	}

	// 构建配置
	appConfig := buildConfigFromCLI(c)

	// 验证配置
	if err := validateConfig(appConfig); err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	logOutput, closeLog, err := openLogOutput(appConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法打开日志文件: %v", err), 1)
	}
	defer closeLog()
	log := logger.InitLogger(appConfig.LogLevel, logOutput)
	ctx := log.WithContext(c.Context)
	ipVersion := appConfig.PingerConfig.IPVersion

	// 确定网关地址
	gateway, autoGateway, err := resolveGateway(ctx, appConfig.Gateway, ipVersion)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法读取默认网关: %v\n请使用 --gateway 指定网关地址", err), 1)
	}

	targets := buildTargets(gateway, appConfig.Extra)
	if err := appConfig.PingerConfig.ValidateTargets(targets); err != nil {
		return cli.Exit(fmt.Sprintf("目标地址错误: %v", err), 1)
	}

	// 显示运行配置
	printRunningConfig(appConfig, targets)

	// 显示系统环境信息
	showSystemInfo()

	fmt.Println("\n正在初始化探测引擎...")

	prober, err := pinger.NewProber(appConfig.PingerConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建探测引擎: %v", err), 1)
	}
	defer prober.Close()

	fmt.Printf("探测引擎初始化成功 (可轮询: %v)\n", pinger.IsPollable(prober))

	// 上报层
	reporters := []core.Reporter{report.NewLogReporter(component(log, "report"))}

	if appConfig.MetricsAddr != "" {
		metrics, err := report.NewMetricsReporter()
		if err != nil {
			return cli.Exit(fmt.Sprintf("无法注册指标: %v", err), 1)
		}
		reporters = append(reporters, metrics)

		srv := startMetricsServer(appConfig.MetricsAddr, metrics.Handler(), component(log, "metrics"))
		defer shutdownMetricsServer(srv)
		fmt.Printf("指标地址: http://%s/metrics\n", appConfig.MetricsAddr)
	}

	var display *tui.TUI
	if !appConfig.NoTUI {
		display = tui.NewTUI(targets, appConfig.TUIConfig)
		reporters = append(reporters, display)
	}

	// 组装调度器，链路维护在网关变化时重新绑定下标0
	var sched *scheduler.Scheduler
	maintainer := newMaintainer(ctx, gateway, autoGateway, ipVersion, func(addr string) {
		if err := sched.Rebind(0, addr); err != nil {
			log.Warn().Err(err).Str("address", addr).Msg("网关重新绑定失败")
		}
	})

	opts := []scheduler.Option{
		scheduler.WithReporter(report.NewMulti(reporters...)),
		scheduler.WithMaintainer(maintainer),
		scheduler.WithLogger(component(log, "scheduler")),
	}
	if display != nil {
		opts = append(opts, scheduler.WithLiveness(display.Liveness))
	}

	sched, err = scheduler.New(targets, prober, appConfig.SchedulerConfig, opts...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建调度器: %v", err), 1)
	}

	fmt.Printf("周期长度: %v\n", sched.CycleDuration())

	if display == nil {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("按 Ctrl+C 退出")
		if err := sched.Run(ctx); err != nil {
			return cli.Exit(fmt.Sprintf("调度器运行出错: %v", err), 1)
		}
		fmt.Println("\n程序已退出")
		return nil
	}

	fmt.Println("\n正在启动TUI界面...")

	// 显示使用说明
	printUsageInstructions()

	// 启动TUI界面 - 这会阻塞直到用户退出
	if err := display.Run(sched.Run); err != nil {
		return cli.Exit(fmt.Sprintf("TUI运行出错: %v", err), 1)
	}

	fmt.Println("\n程序已退出")
	return nil
}

// resolveGateway 未指定网关时从路由表读取
func resolveGateway(ctx context.Context, configured string, ipVersion int) (gateway string, auto bool, err error) {
	if configured != "" {
		return configured, false, nil
	}

	gw, err := lease.Lookup(ipVersion)(ctx)
	if err != nil {
		return "", true, err
	}
	return gw.String(), true, nil
}

// newMaintainer 创建链路维护器
// 平台不支持路由查询时不做维护；手动指定网关时只上报状态、不重新绑定
func newMaintainer(ctx context.Context, gateway string, auto bool, ipVersion int, rebind lease.RebindFunc) core.Maintainer {
	log := component(logger.Logger(ctx), "lease")
	lookup := lease.Lookup(ipVersion)

	if _, err := lookup(ctx); errors.Is(err, lease.ErrUnsupported) {
		log.Info().Msg("当前平台不支持路由查询，跳过链路维护")
		return lease.Noop{}
	}

	if auto {
		return lease.NewRouteMaintainer(gateway, lease.WithLookup(lookup), lease.WithLogger(log), lease.WithRebind(rebind))
	}

	// 手动网关以路由表中的网关为基准，只报告之后的变化
	m := lease.NewRouteMaintainer(gateway, lease.WithLookup(lookup), lease.WithLogger(log))
	if err := m.Seed(ctx); err != nil {
		log.Warn().Err(err).Msg("无法读取路由表网关基准")
	}
	return m
}

// openLogOutput 选择日志输出：TUI模式下只写文件，否则写标准错误
func openLogOutput(config *AppConfig) (io.Writer, func(), error) {
	if config.LogFile != "" {
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, func() {}, err
		}
		return f, func() { _ = f.Close() }, nil
	}

	if config.NoTUI {
		return os.Stderr, func() {}, nil
	}
	return io.Discard, func() {}, nil
}

// component 为日志添加组件字段
func component(log *zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// startMetricsServer 在后台启动 /metrics 服务
func startMetricsServer(addr string, handler http.Handler, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("指标服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("指标服务异常退出")
		}
	}()
	return srv
}

// shutdownMetricsServer 关闭指标服务
func shutdownMetricsServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

// printRunningConfig 打印运行配置信息
func printRunningConfig(config *AppConfig, targets []core.Target) {
	fmt.Println("探测目标:")
	for _, t := range targets {
		fmt.Printf("  [%d] %s\n", t.ID, t)
	}
	fmt.Printf("探测超时: %v\n", config.SchedulerConfig.Timeout)
	fmt.Printf("处理余量: %v\n", config.SchedulerConfig.Overhead)
	fmt.Printf("窗口大小: %d\n", config.SchedulerConfig.HistorySize)
}
