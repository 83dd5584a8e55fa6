// Package pinger 实现了core.Prober接口，提供ICMP探测功能
// 根据操作系统和用户权限自动选择最合适的底层实现
package pinger

import (
	"net"
	"os"
	"runtime"
	"time"

	"github.com/Kevin-Rudy/lossping/pkg/core"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	protocolICMP     = 1  // IPv4 ICMP协议号
	protocolIPv6ICMP = 58 // IPv6 ICMP协议号

	// awaitStep 阻塞等待可轮询探测时的检查间隔
	awaitStep = 5 * time.Millisecond
)

// echoPayload 回显请求携带的数据
var echoPayload = []byte("lossping")

// basePinger 定义了所有探测器实现的基本结构
type basePinger struct {
	config *Config // 配置信息
	id     int     // ICMP标识符
	seq    int     // 最近一次使用的序列号
}

// newBasePinger 创建基础探测器结构
func newBasePinger(config *Config) *basePinger {
	return &basePinger{
		config: config,
		id:     os.Getpid() & 0xffff,
	}
}

// nextSeq 返回下一个序列号，16位回绕
func (bp *basePinger) nextSeq() int {
	bp.seq = (bp.seq + 1) & 0xffff
	return bp.seq
}

// timeoutOr 单次调用的超时覆盖进程级默认值
func (bp *basePinger) timeoutOr(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	return bp.config.Timeout
}

// resolve 解析目标地址（地址已在配置阶段预验证，此处失败属于临时网络问题）
func (bp *basePinger) resolve(target core.Target) (*net.IPAddr, error) {
	return net.ResolveIPAddr(bp.config.GetIPProtocol(), target.Address)
}

// protocolNumber 返回解析回复时使用的协议号
func (bp *basePinger) protocolNumber() int {
	if bp.config.IPVersion == 6 {
		return protocolIPv6ICMP
	}
	return protocolICMP
}

// echoRequest 构建并序列化回显请求
func (bp *basePinger) echoRequest(seq int) ([]byte, error) {
	var typ icmp.Type = ipv4.ICMPTypeEcho
	if bp.config.IPVersion == 6 {
		typ = ipv6.ICMPTypeEchoRequest
	}

	msg := &icmp.Message{
		Type: typ,
		Code: 0,
		Body: &icmp.Echo{
			ID:   bp.id,
			Seq:  seq,
			Data: echoPayload,
		},
	}
	return msg.Marshal(nil)
}

// awaitPending 以阻塞方式等待一个可轮询的探测完成
func awaitPending(pending core.PendingProbe, timeout time.Duration) core.ProbeOutcome {
	deadline := time.Now().Add(timeout)
	for {
		if outcome, done := pending.TryComplete(); done {
			return outcome
		}
		if !time.Now().Before(deadline) {
			return core.ProbeFailure
		}
		time.Sleep(awaitStep)
	}
}

// NewProber 创建新的探测器实例
func NewProber(config *Config) (core.Prober, error) {
	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Engine == EngineProbing {
		return newProbingProber(config)
	}

	// 获取当前平台的能力实现
	platform := getPlatformCapability()

	// 优先尝试特权模式（所有平台统一用raw socket）
	if platform.hasPrivilegedAccess() {
		return platform.createPrivilegedProber(config)
	}

	// 降级到非特权模式（各平台不同的实现）
	return platform.createUnprivilegedProber(config)
}

// IsPollable 判断探测器是否支持非阻塞轮询
func IsPollable(p core.Prober) bool {
	_, ok := p.(core.Dispatcher)
	return ok
}

// GetSystemInfo 获取完整的系统信息
// 返回操作系统名称、权限状态和实现类型
func GetSystemInfo() (osName, privilegeStatus, implementationType string) {
	// 获取操作系统名称
	switch runtime.GOOS {
	case "windows":
		osName = "Windows"
	case "linux":
		osName = "Linux"
	case "darwin":
		osName = "macOS"
	default:
		osName = runtime.GOOS
	}

	// 获取当前平台能力并检查权限状态
	platform := getPlatformCapability()
	hasPriv := platform.hasPrivilegedAccess()

	switch runtime.GOOS {
	case "windows":
		if hasPriv {
			privilegeStatus = "管理员模式 (Raw Socket)"
			implementationType = "Raw Socket (可轮询)"
		} else {
			privilegeStatus = "普通用户模式 (Windows API)"
			implementationType = "Windows ICMP API (阻塞)"
		}
	case "linux":
		if hasPriv {
			privilegeStatus = "特权模式 (Raw Socket)"
			implementationType = "Linux Raw Socket (可轮询)"
		} else {
			privilegeStatus = "非特权模式 (DGRAM Socket)"
			implementationType = "Linux DGRAM Socket (可轮询)"
		}
	case "darwin":
		if hasPriv {
			privilegeStatus = "特权模式 (Root权限)"
			implementationType = "macOS Raw Socket (可轮询)"
		} else {
			privilegeStatus = "非特权模式 (DGRAM Socket)"
			implementationType = "macOS DGRAM Socket (可轮询)"
		}
	default:
		if hasPriv {
			privilegeStatus = "特权模式"
			implementationType = "通用Raw Socket"
		} else {
			privilegeStatus = "权限不足"
			implementationType = "通用Raw Socket (需要提权)"
		}
	}

	return
}

// GetOSName 获取操作系统名称
func GetOSName() string {
	osName, _, _ := GetSystemInfo()
	return osName
}

// GetPrivilegeStatus 获取权限状态描述
func GetPrivilegeStatus() string {
	_, privilegeStatus, _ := GetSystemInfo()
	return privilegeStatus
}

// GetImplementationType 获取探测实现类型描述
func GetImplementationType() string {
	_, _, implementationType := GetSystemInfo()
	return implementationType
}

// HasPrivilegedAccess 检查是否有特权访问能力
func HasPrivilegedAccess() bool {
	platform := getPlatformCapability()
	return platform.hasPrivilegedAccess()
}
