//go:build linux

package lease

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/vishvananda/netlink"
)

// DefaultGateway 通过 netlink 读取 IPv4 主路由表中的默认网关
func DefaultGateway(context.Context) (netip.Addr, error) {
	return routeGateway(netlink.FAMILY_V4)
}

// DefaultGateway6 通过 netlink 读取 IPv6 默认网关，链路本地地址附带出接口名
func DefaultGateway6(context.Context) (netip.Addr, error) {
	return routeGateway(netlink.FAMILY_V6)
}

func routeGateway(family int) (netip.Addr, error) {
	routes, err := netlink.RouteList(nil, family)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("lease: 读取路由表失败: %w", err)
	}

	for _, r := range routes {
		if !isDefault(r) || r.Gw == nil {
			continue
		}
		gw, ok := netip.AddrFromSlice(r.Gw)
		if !ok {
			continue
		}
		gw = gw.Unmap()
		if gw.Is6() && gw.IsLinkLocalUnicast() {
			link, err := netlink.LinkByIndex(r.LinkIndex)
			if err != nil {
				return netip.Addr{}, fmt.Errorf("lease: 读取网关接口失败: %w", err)
			}
			gw = gw.WithZone(link.Attrs().Name)
		}
		return gw, nil
	}
	return netip.Addr{}, ErrNoDefaultRoute
}

func isDefault(r netlink.Route) bool {
	if r.Dst == nil {
		return true
	}
	ones, _ := r.Dst.Mask.Size()
	return ones == 0 && r.Dst.IP.IsUnspecified()
}
