package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/Kevin-Rudy/lossping/pkg/logger"
	"github.com/urfave/cli/v2"
)

// parseArgs 使用真实的参数定义解析 args，返回构建出的配置
func parseArgs(t *testing.T, args ...string) *AppConfig {
	t.Helper()

	app := createCliApp()
	var got *AppConfig
	app.Action = func(c *cli.Context) error {
		got = buildConfigFromCLI(c)
		return nil
	}

	if err := app.Run(append([]string{AppName}, args...)); err != nil {
		t.Fatalf("app.Run() error: %v", err)
	}
	if got == nil {
		t.Fatal("action was not invoked")
	}
	return got
}

func TestDefaultFlags(t *testing.T) {
	cfg := parseArgs(t)

	if cfg.SchedulerConfig.CycleDuration(3) != 3000*time.Millisecond {
		t.Errorf("default cycle for 3 targets = %v, want 3s", cfg.SchedulerConfig.CycleDuration(3))
	}
	if cfg.SchedulerConfig.HistorySize != 300 {
		t.Errorf("default history = %d, want 300", cfg.SchedulerConfig.HistorySize)
	}
	if len(cfg.Extra) != 2 || cfg.Extra[0] != "8.8.8.8" || cfg.Extra[1] != "1.1.1.1" {
		t.Errorf("default targets = %v", cfg.Extra)
	}
	if cfg.Gateway != "" || cfg.NoTUI {
		t.Errorf("unexpected defaults: gateway=%q noTUI=%v", cfg.Gateway, cfg.NoTUI)
	}
	if err := validateConfig(cfg); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestFlagOverrides(t *testing.T) {
	cfg := parseArgs(t,
		"--gateway", "10.0.0.1",
		"--target", "9.9.9.9",
		"--timeout", "500ms",
		"--overhead", "100ms",
		"--history", "60",
		"--engine", "probing",
		"--no-tui",
	)

	if cfg.PingerConfig.Timeout != 500*time.Millisecond || cfg.SchedulerConfig.Timeout != 500*time.Millisecond {
		t.Errorf("timeout should reach both pinger and scheduler: %v / %v",
			cfg.PingerConfig.Timeout, cfg.SchedulerConfig.Timeout)
	}
	if cfg.SchedulerConfig.Overhead != 100*time.Millisecond || cfg.SchedulerConfig.HistorySize != 60 {
		t.Errorf("unexpected scheduler config %+v", cfg.SchedulerConfig)
	}
	if cfg.PingerConfig.Engine != "probing" {
		t.Errorf("engine = %q", cfg.PingerConfig.Engine)
	}
	if cfg.Gateway != "10.0.0.1" || !cfg.NoTUI {
		t.Errorf("gateway=%q noTUI=%v", cfg.Gateway, cfg.NoTUI)
	}
	if len(cfg.Extra) != 1 || cfg.Extra[0] != "9.9.9.9" {
		t.Errorf("targets = %v, want [9.9.9.9]", cfg.Extra)
	}
}

func TestYAMLConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lossping.yaml")
	content := "timeout: 800ms\nhistory: 120\nno-tui: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := parseArgs(t, "--config", path, "--history", "90")

	if cfg.PingerConfig.Timeout != 800*time.Millisecond {
		t.Errorf("timeout from file = %v, want 800ms", cfg.PingerConfig.Timeout)
	}
	if cfg.SchedulerConfig.HistorySize != 90 {
		t.Errorf("command line should win over file: history = %d, want 90", cfg.SchedulerConfig.HistorySize)
	}
	if !cfg.NoTUI {
		t.Error("no-tui from file should be applied")
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := parseArgs(t, "--history", "0")
	if err := validateConfig(cfg); err == nil {
		t.Error("zero history should be rejected")
	}

	cfg = parseArgs(t, "--engine", "carrier-pigeon")
	if err := validateConfig(cfg); err == nil {
		t.Error("unknown engine should be rejected")
	}
}

func TestBuildTargets(t *testing.T) {
	targets := buildTargets("192.168.1.1", []string{"8.8.8.8", " ", "1.1.1.1"})

	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	if !targets[0].Gateway || targets[0].Address != "192.168.1.1" {
		t.Errorf("target 0 should be the gateway: %+v", targets[0])
	}
	for i, tgt := range targets {
		if tgt.ID != i {
			t.Errorf("target %d has ID %d", i, tgt.ID)
		}
	}
	if targets[2].Address != "1.1.1.1" {
		t.Errorf("blank entries should be skipped: %+v", targets)
	}
}

func TestOpenLogOutput(t *testing.T) {
	w, closeFn, err := openLogOutput(&AppConfig{NoTUI: true})
	if err != nil || w != os.Stderr {
		t.Errorf("no-tui without file should log to stderr, got %v %v", w, err)
	}
	closeFn()

	path := filepath.Join(t.TempDir(), "lossping.log")
	w, closeFn, err = openLogOutput(&AppConfig{LogFile: path})
	if err != nil {
		t.Fatalf("openLogOutput() error: %v", err)
	}
	if _, err := w.Write([]byte("line\n")); err != nil {
		t.Errorf("write to log file: %v", err)
	}
	closeFn()

	if data, _ := os.ReadFile(path); string(data) != "line\n" {
		t.Errorf("log file content = %q", data)
	}
}

func TestTUIFlags(t *testing.T) {
	cfg := parseArgs(t, "--refresh-rate", "100ms", "--chart-cycles", "60")

	if cfg.TUIConfig.RefreshInterval != 100*time.Millisecond {
		t.Errorf("refresh interval = %v, want 100ms", cfg.TUIConfig.RefreshInterval)
	}
	if cfg.TUIConfig.MaxHistorySize != 60 {
		t.Errorf("chart cycles = %d, want 60", cfg.TUIConfig.MaxHistorySize)
	}
	if cfg.TUIConfig.StripSize != 60 || cfg.TUIConfig.MinChartWidth != 20 {
		t.Errorf("unset options should keep defaults: %+v", cfg.TUIConfig)
	}

	cfg = parseArgs(t, "--chart-cycles", "5")
	if err := validateConfig(cfg); err == nil {
		t.Error("chart cycles below 10 should be rejected")
	}
}

func TestManualGatewayMaintainer(t *testing.T) {
	ctx := logger.InitLogger("info", io.Discard).WithContext(context.Background())

	rebinds := 0
	m := newMaintainer(ctx, "router.local", false, 4, func(string) { rebinds++ })

	if got := m.Maintain(ctx); got == core.LeaseRebindOK {
		t.Errorf("manual gateway first Maintain() = %v, want no rebind report", got)
	}
	if rebinds != 0 {
		t.Errorf("manual gateway must never rebind, got %d calls", rebinds)
	}
}
