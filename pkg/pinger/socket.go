// Package pinger - 基于 x/net/icmp 的套接字探测器
// 原始套接字和DGRAM套接字共用此实现，二者都支持非阻塞轮询
package pinger

import (
	"errors"
	"net"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// readSlice 每次 TryComplete 允许读取的最长时间
const readSlice = time.Millisecond

// socketProber 单个ICMP套接字上的探测器，同一时间只有一个在途探测
type socketProber struct {
	*basePinger
	conn     *icmp.PacketConn
	datagram bool   // DGRAM套接字：内核改写ICMP ID，对端地址为UDPAddr
	reply    []byte // 接收缓冲区
}

// newSocketProber 在指定网络上监听ICMP
func newSocketProber(config *Config, network string, datagram bool) (*socketProber, error) {
	listenAddr := "0.0.0.0"
	if config.IPVersion == 6 {
		listenAddr = "::"
	}

	conn, err := icmp.ListenPacket(network, listenAddr)
	if err != nil {
		return nil, err
	}

	return &socketProber{
		basePinger: newBasePinger(config),
		conn:       conn,
		datagram:   datagram,
		reply:      make([]byte, 1500),
	}, nil
}

// Dispatch 实现core.Dispatcher接口，发出回显请求后立即返回
func (p *socketProber) Dispatch(target core.Target, timeout time.Duration) (core.PendingProbe, error) {
	dst, err := p.resolve(target)
	if err != nil {
		return nil, err
	}

	seq := p.nextSeq()
	data, err := p.echoRequest(seq)
	if err != nil {
		return nil, err
	}

	var addr net.Addr = dst
	if p.datagram {
		addr = &net.UDPAddr{IP: dst.IP, Zone: dst.Zone}
	}

	sent := time.Now()
	if _, err := p.conn.WriteTo(data, addr); err != nil {
		return nil, err
	}

	return &socketPending{
		prober:   p,
		dst:      dst.IP,
		seq:      seq,
		deadline: sent.Add(p.timeoutOr(timeout)),
	}, nil
}

// Probe 实现core.Prober接口，阻塞直到收到回复或超时
func (p *socketProber) Probe(target core.Target, timeout time.Duration) core.ProbeOutcome {
	pending, err := p.Dispatch(target, timeout)
	if err != nil {
		return core.ProbeSendFailed
	}
	return awaitPending(pending, p.timeoutOr(timeout))
}

// Close 关闭套接字
func (p *socketProber) Close() error {
	return p.conn.Close()
}

// match 判断收到的报文是否是对本次探测的回应
func (p *socketProber) match(data []byte, from net.Addr, dst net.IP, seq int) (core.ProbeOutcome, bool) {
	msg, err := icmp.ParseMessage(p.protocolNumber(), data)
	if err != nil {
		return 0, false
	}

	switch msg.Type {
	case ipv4.ICMPTypeEchoReply, ipv6.ICMPTypeEchoReply:
		echo, ok := msg.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq || !addrIP(from).Equal(dst) {
			return 0, false
		}
		// DGRAM套接字的ID由内核分配，无法校验
		if !p.datagram && echo.ID != p.id {
			return 0, false
		}
		return core.ProbeSuccess, true

	case ipv4.ICMPTypeDestinationUnreachable:
		body, ok := msg.Body.(*icmp.DstUnreach)
		if ok && unreachableFor(body.Data, dst, seq) {
			return core.ProbeFailure, true
		}

	case ipv6.ICMPTypeDestinationUnreachable:
		body, ok := msg.Body.(*icmp.DstUnreach)
		if ok && unreachableFor6(body.Data, dst, seq) {
			return core.ProbeFailure, true
		}
	}

	return 0, false
}

// unreachableFor 检查不可达报文内嵌的原始报文是否属于本次探测
// data 为原始IPv4头加ICMP头的前8字节
func unreachableFor(data []byte, dst net.IP, seq int) bool {
	if len(data) < 20 {
		return false
	}
	headerLen := int(data[0]&0x0f) * 4
	if headerLen < 20 || len(data) < headerLen+8 {
		return false
	}
	if !net.IP(data[16:20]).Equal(dst) {
		return false
	}
	inner := data[headerLen:]
	return int(inner[6])<<8|int(inner[7]) == seq
}

// unreachableFor6 同 unreachableFor，data 为40字节IPv6固定头加ICMPv6头的前8字节
func unreachableFor6(data []byte, dst net.IP, seq int) bool {
	if len(data) < ipv6.HeaderLen+8 {
		return false
	}
	// 下一个头必须直接是ICMPv6，带扩展头的不匹配
	if data[6] != protocolIPv6ICMP {
		return false
	}
	if !net.IP(data[24:40]).Equal(dst) {
		return false
	}
	inner := data[ipv6.HeaderLen:]
	return int(inner[6])<<8|int(inner[7]) == seq
}

// addrIP 从对端地址中取出IP
func addrIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP
	case *net.UDPAddr:
		return a.IP
	default:
		return nil
	}
}

// socketPending 一个在途的套接字探测
type socketPending struct {
	prober   *socketProber
	dst      net.IP
	seq      int
	deadline time.Time

	done    bool
	outcome core.ProbeOutcome
}

// TryComplete 实现core.PendingProbe接口
// 每次调用最多读取 readSlice 时长，不会长时间阻塞
func (sp *socketPending) TryComplete() (core.ProbeOutcome, bool) {
	if sp.done {
		return sp.outcome, true
	}

	p := sp.prober
	for {
		if err := p.conn.SetReadDeadline(time.Now().Add(readSlice)); err != nil {
			return sp.finish(core.ProbeFailure)
		}

		n, from, err := p.conn.ReadFrom(p.reply)
		if err != nil {
			if isTimeout(err) {
				if !time.Now().Before(sp.deadline) {
					return sp.finish(core.ProbeFailure)
				}
				return 0, false
			}
			return sp.finish(core.ProbeFailure)
		}

		// 不属于本次探测的报文（迟到的回复、其他进程的报文）直接丢弃
		if outcome, ok := p.match(p.reply[:n], from, sp.dst, sp.seq); ok {
			return sp.finish(outcome)
		}
	}
}

// finish 记录最终结果
func (sp *socketPending) finish(outcome core.ProbeOutcome) (core.ProbeOutcome, bool) {
	sp.done = true
	sp.outcome = outcome
	return outcome, true
}

// isTimeout 判断错误是否为读取超时
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
