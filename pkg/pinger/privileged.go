// Package pinger - 特权模式实现
// 使用原始套接字，需要管理员/root权限，但支持所有操作系统
package pinger

import (
	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// newPrivilegedProber 创建特权模式的探测器实例
func newPrivilegedProber(config *Config) (core.Prober, error) {
	network := "ip4:icmp"
	if config.IPVersion == 6 {
		network = "ip6:ipv6-icmp"
	}
	return newSocketProber(config, network, false)
}
