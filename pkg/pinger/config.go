// Package pinger 配置定义
package pinger

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
)

// 探测引擎
const (
	EngineAuto    = "auto"    // 根据平台和权限自动选择套接字实现
	EngineProbing = "probing" // 使用 pro-bing 库的阻塞实现
)

// Config pinger组件的配置结构
// 在第一个周期开始前确定，之后不再修改
type Config struct {
	IPVersion  int           // IP版本，4或6
	Timeout    time.Duration // 单次探测超时时间（进程级默认值）
	Engine     string        // 探测引擎
	Privileged bool          // probing引擎是否使用原始套接字
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		IPVersion:  4,                      // 默认IPv4
		Timeout:    950 * time.Millisecond, // 默认950ms超时
		Engine:     EngineAuto,             // 默认自动选择
		Privileged: false,
	}
}

// GetIPProtocol 获取IP协议字符串，用于网络操作
func (c *Config) GetIPProtocol() string {
	if c.IPVersion == 6 {
		return "ip6"
	}
	return "ip4"
}

// ValidateTargets 验证目标地址是否符合当前IP版本配置
func (c *Config) ValidateTargets(targets []core.Target) error {
	protocol := c.GetIPProtocol()

	for _, target := range targets {
		if target.Address == "" {
			return fmt.Errorf("目标 %s 的地址不能为空", target.Name)
		}

		_, err := net.ResolveIPAddr(protocol, target.Address)
		if err != nil {
			return fmt.Errorf("无法将 '%s' 解析为IPv%d地址: %w", target.Address, c.IPVersion, err)
		}
	}
	return nil
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.IPVersion != 4 && c.IPVersion != 6 {
		return errors.New("IP版本必须是4或6")
	}

	if c.Timeout <= 0 {
		return errors.New("超时时间必须大于0")
	}

	if c.Timeout < 100*time.Millisecond {
		return errors.New("超时时间不能小于100ms")
	}

	switch c.Engine {
	case EngineAuto, EngineProbing:
	default:
		return fmt.Errorf("未知的探测引擎: %q", c.Engine)
	}

	return nil
}
