//go:build darwin

package pinger

import (
	"os"

	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// darwinCapability macOS平台能力实现
type darwinCapability struct{}

// hasPrivilegedAccess 检查macOS root权限
func (d *darwinCapability) hasPrivilegedAccess() bool {
	return checkDarwinRoot()
}

// createPrivilegedProber 创建特权模式探测器（使用raw socket）
func (d *darwinCapability) createPrivilegedProber(config *Config) (core.Prober, error) {
	return newPrivilegedProber(config)
}

// createUnprivilegedProber macOS允许普通用户使用DGRAM ICMP套接字
func (d *darwinCapability) createUnprivilegedProber(config *Config) (core.Prober, error) {
	return newDgramProber(config)
}

// checkDarwinRoot 检查macOS系统的root权限
func checkDarwinRoot() bool {
	return os.Geteuid() == 0
}

// getPlatformCapability 获取macOS平台的能力实现
func getPlatformCapability() platformCapability {
	return &darwinCapability{}
}
