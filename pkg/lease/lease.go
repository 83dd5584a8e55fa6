// Package lease 实现每周期执行一次的链路维护
// 通过默认网关的变化推断租约续期/重绑定状态，并在网关地址改变时重新绑定网关目标
package lease

import (
	"context"
	"errors"
	"net/netip"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"github.com/rs/zerolog"
)

var (
	// ErrNoDefaultRoute 路由表中没有默认路由
	ErrNoDefaultRoute = errors.New("lease: 没有默认路由")
	// ErrUnsupported 当前平台不支持路由表查询
	ErrUnsupported = errors.New("lease: 当前平台不支持路由查询")
)

// LookupFunc 查询当前默认网关，IPv6 链路本地地址带接口 zone
type LookupFunc func(ctx context.Context) (netip.Addr, error)

// Lookup 按IP版本返回对应地址族的默认网关查询
func Lookup(ipVersion int) LookupFunc {
	if ipVersion == 6 {
		return DefaultGateway6
	}
	return DefaultGateway
}

// RebindFunc 网关地址变化时的回调
type RebindFunc func(address string)

// Noop 不执行任何维护，始终返回 LeaseNone
type Noop struct{}

// Maintain 实现 core.Maintainer
func (Noop) Maintain(context.Context) core.LeaseStatus { return core.LeaseNone }

// RouteMaintainer 基于默认路由的链路维护
// 只在调度goroutine上调用
type RouteMaintainer struct {
	lookup   LookupFunc
	onRebind RebindFunc
	logger   zerolog.Logger

	gateway netip.Addr // 最近一次确认的网关，无效值表示未知
	lost    bool       // 上一次查询没有默认路由
}

// Option RouteMaintainer 选项函数类型
type Option func(*RouteMaintainer)

// WithLookup 替换默认网关查询函数
func WithLookup(f LookupFunc) Option {
	return func(m *RouteMaintainer) {
		if f != nil {
			m.lookup = f
		}
	}
}

// WithRebind 设置网关变化回调
func WithRebind(f RebindFunc) Option {
	return func(m *RouteMaintainer) {
		m.onRebind = f
	}
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) Option {
	return func(m *RouteMaintainer) {
		m.logger = l
	}
}

// NewRouteMaintainer 创建链路维护器，initial 为当前正在探测的网关地址
func NewRouteMaintainer(initial string, opts ...Option) *RouteMaintainer {
	m := &RouteMaintainer{
		lookup: DefaultGateway,
		logger: zerolog.Nop(),
	}
	if ip, err := netip.ParseAddr(initial); err == nil {
		m.gateway = ip.Unmap()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Gateway 返回最近一次确认的网关地址
func (m *RouteMaintainer) Gateway() netip.Addr {
	return m.gateway
}

// Seed 用一次路由查询确定基准网关，不回调也不上报
// 手动指定的网关不是IP或与路由表不一致时，避免首个周期误报重绑定
func (m *RouteMaintainer) Seed(ctx context.Context) error {
	gw, err := m.lookup(ctx)
	if err != nil {
		return err
	}
	m.gateway = gw
	m.lost = false
	return nil
}

// Maintain 实现 core.Maintainer
//
//	网关不变            -> LeaseNone
//	默认路由消失        -> LeaseRenewFailed
//	默认路由恢复且不变  -> LeaseRenewOK
//	网关变化            -> LeaseRebindOK（触发重新绑定）
//	其他查询错误        -> LeaseRebindFailed
func (m *RouteMaintainer) Maintain(ctx context.Context) core.LeaseStatus {
	gw, err := m.lookup(ctx)
	switch {
	case errors.Is(err, ErrNoDefaultRoute):
		if !m.lost {
			m.logger.Warn().Msg("默认路由丢失")
		}
		m.lost = true
		return core.LeaseRenewFailed
	case err != nil:
		m.logger.Warn().Err(err).Msg("默认网关查询失败")
		return core.LeaseRebindFailed
	}

	if !m.gateway.IsValid() || gw != m.gateway {
		old := m.gateway
		m.gateway = gw
		m.lost = false
		m.logger.Info().
			Stringer("from", old).
			Stringer("to", gw).
			Msg("默认网关已变化")
		if m.onRebind != nil {
			m.onRebind(gw.String())
		}
		return core.LeaseRebindOK
	}

	if m.lost {
		m.lost = false
		m.logger.Info().Stringer("gateway", gw).Msg("默认路由已恢复")
		return core.LeaseRenewOK
	}
	return core.LeaseNone
}
