// Package pinger - pro-bing 引擎
// 每次探测创建一个只发一个包的 probing.Pinger，只支持阻塞模式
package pinger

import (
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	probing "github.com/prometheus-community/pro-bing"
)

// probingProber 基于 pro-bing 的探测器
type probingProber struct {
	config *Config
}

// newProbingProber 创建 pro-bing 探测器
func newProbingProber(config *Config) (core.Prober, error) {
	return &probingProber{config: config}, nil
}

// Probe 实现core.Prober接口
func (p *probingProber) Probe(target core.Target, timeout time.Duration) core.ProbeOutcome {
	if timeout <= 0 {
		timeout = p.config.Timeout
	}

	pinger := probing.New(target.Address)
	pinger.SetNetwork(p.config.GetIPProtocol())
	pinger.SetPrivileged(p.config.Privileged)
	pinger.Count = 1
	pinger.Timeout = timeout

	if err := pinger.Resolve(); err != nil {
		return core.ProbeSendFailed
	}

	if err := pinger.Run(); err != nil {
		return core.ProbeSendFailed
	}

	if pinger.Statistics().PacketsRecv > 0 {
		return core.ProbeSuccess
	}
	return core.ProbeFailure
}

// Close 每次探测的资源在 Run 返回时已经释放
func (p *probingProber) Close() error {
	return nil
}
