//go:build windows

// Package pinger - Windows非特权模式实现
// 使用Icmp.dll系统调用，适用于Windows系统
// IcmpSendEcho 是同步调用，该探测器只支持阻塞模式
package pinger

import (
	"errors"
	"syscall"
	"time"
	"unsafe"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"golang.org/x/sys/windows"
)

var (
	// 加载Icmp.dll库
	icmpDLL = windows.NewLazyDLL("Icmp.dll")

	// 获取函数地址
	icmpCreateFile  = icmpDLL.NewProc("IcmpCreateFile")
	icmpCloseHandle = icmpDLL.NewProc("IcmpCloseHandle")
	icmpSendEcho    = icmpDLL.NewProc("IcmpSendEcho")
)

// ICMP_ECHO_REPLY Windows ICMP回复结构体
type ICMP_ECHO_REPLY struct {
	Address       uint32
	Status        uint32
	RoundTripTime uint32
	DataSize      uint16
	Reserved      uint16
	Data          uintptr
	Options       ICMP_OPTIONS
}

// ICMP_OPTIONS Windows ICMP选项结构体
type ICMP_OPTIONS struct {
	Ttl         uint8
	Tos         uint8
	Flags       uint8
	OptionsSize uint8
	OptionsData uintptr
}

// windowsProber Windows非特权模式的探测器实现
type windowsProber struct {
	*basePinger
	icmpHandle syscall.Handle // ICMP句柄
}

// newWindowsProber 创建Windows非特权模式的探测器实例
func newWindowsProber(config *Config) (core.Prober, error) {
	if config.IPVersion == 6 {
		return nil, errors.New("Windows ICMP API 模式暂不支持IPv6，请以管理员身份运行")
	}

	p := &windowsProber{
		basePinger: newBasePinger(config),
	}

	// 创建ICMP句柄
	ret, _, err := icmpCreateFile.Call()
	if ret == 0 || ret == uintptr(syscall.InvalidHandle) {
		return nil, err
	}

	p.icmpHandle = syscall.Handle(ret)
	return p, nil
}

// Probe 实现core.Prober接口，发送单个ping包并等待结果
func (p *windowsProber) Probe(target core.Target, timeout time.Duration) core.ProbeOutcome {
	dst, err := p.resolve(target)
	if err != nil {
		return core.ProbeSendFailed
	}

	// 将IP地址转换为32位整数（网络字节序）
	ip := dst.IP.To4()
	if ip == nil {
		return core.ProbeSendFailed
	}
	destAddr := uint32(ip[0]) | (uint32(ip[1]) << 8) | (uint32(ip[2]) << 16) | (uint32(ip[3]) << 24)

	// 准备接收缓冲区
	// 需要足够大的缓冲区来存储ICMP_ECHO_REPLY结构和数据
	replySize := unsafe.Sizeof(ICMP_ECHO_REPLY{}) + uintptr(len(echoPayload)) + 8
	replyBuffer := make([]byte, replySize)

	// 设置超时（毫秒）
	timeoutMs := uint32(p.timeoutOr(timeout).Milliseconds())

	// 调用IcmpSendEcho
	ret, _, _ := icmpSendEcho.Call(
		uintptr(p.icmpHandle),                    // ICMP句柄
		uintptr(destAddr),                        // 目标IP地址
		uintptr(unsafe.Pointer(&echoPayload[0])), // 发送数据
		uintptr(len(echoPayload)),                // 发送数据长度
		0,                                        // ICMP选项（NULL）
		uintptr(unsafe.Pointer(&replyBuffer[0])), // 接收缓冲区
		uintptr(len(replyBuffer)),                // 接收缓冲区大小
		uintptr(timeoutMs),                       // 超时时间（毫秒）
	)

	if ret == 0 {
		// 请求失败或超时
		return core.ProbeFailure
	}

	// 解析回复
	reply := (*ICMP_ECHO_REPLY)(unsafe.Pointer(&replyBuffer[0]))
	if reply.Status == 0 { // IP_SUCCESS
		return core.ProbeSuccess
	}
	return core.ProbeFailure
}

// Close 关闭ICMP句柄
func (p *windowsProber) Close() error {
	if p.icmpHandle != syscall.InvalidHandle {
		icmpCloseHandle.Call(uintptr(p.icmpHandle))
		p.icmpHandle = syscall.InvalidHandle
	}
	return nil
}

// checkWindowsAdmin 检查是否具有Windows管理员权限
func checkWindowsAdmin() bool {
	var sid *windows.SID

	// 获取管理员组的SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	// 获取当前进程的token
	token := windows.Token(0)

	// 检查是否是管理员组成员
	isMember, err := token.IsMember(sid)
	if err != nil {
		return false
	}

	return isMember
}
