//go:build linux || darwin

// Package pinger - 非特权模式实现
// 使用SOCK_DGRAM类型的ICMP套接字，适用于Linux和macOS
// Linux需要 net.ipv4.ping_group_range 包含当前用户组
package pinger

import (
	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// newDgramProber 创建非特权模式的探测器实例
func newDgramProber(config *Config) (core.Prober, error) {
	network := "udp4"
	if config.IPVersion == 6 {
		network = "udp6"
	}
	return newSocketProber(config, network, true)
}
