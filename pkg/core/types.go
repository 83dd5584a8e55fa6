// Package core 定义了探测框架的核心接口和数据结构
// 这些接口保证了调度器与具体传输层、显示层的完全解耦
package core

import (
	"context"
	"fmt"
	"time"
)

// Target 表示一个探测目标
// 目标集合在配置阶段确定，运行期间不增删，只允许网关地址被重新绑定
type Target struct {
	ID      int    // 目标在数组中的下标，同时作为环形缓冲区的索引
	Name    string // 显示名称（如 gateway、dns-1）
	Address string // 目标地址（IP或域名）
	Gateway bool   // 是否为网关目标
}

// String 返回便于日志输出的目标描述
func (t Target) String() string {
	return fmt.Sprintf("%s(%s)", t.Name, t.Address)
}

// ProbeOutcome 表示单次探测的结果
type ProbeOutcome int

const (
	ProbeSuccess    ProbeOutcome = iota // 收到回复
	ProbeFailure                        // 超时或不可达
	ProbeSendFailed                     // 探测包无法发出
)

// Lost 判断该结果是否计为丢包
// SendFailed 与 Failure 在丢包统计上等价
func (o ProbeOutcome) Lost() bool {
	return o != ProbeSuccess
}

// String 返回结果的文本表示
func (o ProbeOutcome) String() string {
	switch o {
	case ProbeSuccess:
		return "success"
	case ProbeFailure:
		return "failure"
	case ProbeSendFailed:
		return "send_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Prober 定义了阻塞式探测执行器的标准接口
// 任何传输实现（原始套接字、DGRAM套接字、Windows API等）都应该实现这个接口
type Prober interface {
	// Probe 发送一次探测并等待结果，必须在 timeout 加少量调度余量内返回
	Probe(target Target, timeout time.Duration) ProbeOutcome

	// Close 释放底层套接字或句柄
	Close() error
}

// Dispatcher 是可轮询探测器的可选扩展接口
// 调度器通过类型断言检测该能力，不支持时退化为阻塞模式
type Dispatcher interface {
	// Dispatch 发出探测包并立即返回一个待完成的探测
	// 返回错误表示探测包无法发出，调度器将其记为 ProbeSendFailed
	Dispatch(target Target, timeout time.Duration) (PendingProbe, error)
}

// PendingProbe 表示一个已经发出、尚未完成的探测
type PendingProbe interface {
	// TryComplete 非阻塞地检查探测是否完成
	// 第二个返回值为 false 时表示仍在等待回复
	TryComplete() (ProbeOutcome, bool)
}

// LeaseStatus 表示链路维护的状态码
// 已知取值之外的任何数值都视为 Unknown(code)
type LeaseStatus int

const (
	LeaseNone         LeaseStatus = iota // 无事发生
	LeaseRenewFailed                     // 续约失败
	LeaseRenewOK                         // 续约成功
	LeaseRebindFailed                    // 重新绑定失败
	LeaseRebindOK                        // 重新绑定成功
)

// Known 判断状态码是否属于已知集合
func (s LeaseStatus) Known() bool {
	return s >= LeaseNone && s <= LeaseRebindOK
}

// String 返回状态码的文本表示
func (s LeaseStatus) String() string {
	switch s {
	case LeaseNone:
		return "None"
	case LeaseRenewFailed:
		return "RenewFailed"
	case LeaseRenewOK:
		return "RenewOK"
	case LeaseRebindFailed:
		return "RebindFailed"
	case LeaseRebindOK:
		return "RebindOK"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Failed 判断状态是否代表一次失败的维护操作
func (s LeaseStatus) Failed() bool {
	return s == LeaseRenewFailed || s == LeaseRebindFailed || !s.Known()
}

// Maintainer 链路维护协作者
// 每个周期在上报之后、空闲等待之前被调用一次
type Maintainer interface {
	Maintain(ctx context.Context) LeaseStatus
}

// TargetReport 单个目标在一个周期结束时的汇总
type TargetReport struct {
	Target   Target
	Outcome  ProbeOutcome // 本周期的探测结果
	Loss     float64      // 滚动丢包率(0-100)
	Samples  int          // 当前逻辑窗口大小
	Capacity int          // 滚动窗口容量
}

// CycleReport 一个完整探测周期的汇总
type CycleReport struct {
	Cycle    uint64        // 周期序号，从1开始
	Started  time.Time     // 周期开始时间
	Duration time.Duration // 探测阶段耗时（不含空闲等待）
	Targets  []TargetReport
}

// Reporter 外部上报层（显示、日志、指标）的接口
type Reporter interface {
	// ReportCycle 在所有目标探测完成后调用
	ReportCycle(report CycleReport)

	// ReportLease 在链路维护完成后调用
	ReportLease(cycle uint64, status LeaseStatus)
}

// LivenessFunc 等待期间按固定子间隔调用的存活回调，不携带任何数据
type LivenessFunc func()
