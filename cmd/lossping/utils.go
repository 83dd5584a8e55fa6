package main

import (
	"fmt"

	"github.com/Kevin-Rudy/lossping/pkg/pinger"
)

// 程序信息常量
const (
	AppName    = "lossping"
	AppVersion = "0.1.0"
	AppDesc    = "固定周期探测网关与外部目标的滚动丢包率监视工具"
)

// showSystemInfo 显示系统环境和配置信息
func showSystemInfo() {
	osName, privilege, impl := pinger.GetSystemInfo()
	fmt.Println("\n系统信息:")
	fmt.Printf("  操作系统: %s\n", osName)
	fmt.Printf("  权限状态: %s\n", privilege)
	fmt.Printf("  实现方式: %s\n", impl)
}

// printUsageInstructions 显示TUI操作说明
func printUsageInstructions() {
	fmt.Println("操作说明:")
	fmt.Println("  ↑/↓ 方向键  - 选择目标，查看最近结果")
	fmt.Println("  在边界继续按方向键 - 切换到全部目标")
	fmt.Println("  q 或 Ctrl+C - 退出程序")
	fmt.Println("========================================")
}
