//go:build !linux

package lease

import (
	"context"
	"net/netip"
)

// DefaultGateway 非Linux平台不支持路由表查询
func DefaultGateway(context.Context) (netip.Addr, error) {
	return netip.Addr{}, ErrUnsupported
}

// DefaultGateway6 非Linux平台不支持路由表查询
func DefaultGateway6(context.Context) (netip.Addr, error) {
	return netip.Addr{}, ErrUnsupported
}
