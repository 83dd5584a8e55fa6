// Package loss 为每个目标维护滚动丢包率
package loss

import (
	"errors"
	"fmt"

	"github.com/Kevin-Rudy/lossping/pkg/history"
)

// ErrNoTargets 没有任何目标
var ErrNoTargets = errors.New("loss: 至少需要一个目标")

// Aggregator 按目标下标组织的环形缓冲区数组
// 每个缓冲区只属于一个目标，只由调度器单线程写入
type Aggregator struct {
	rings []*history.Ring
	loss  []float64 // 每个目标最近一次计算的丢包率(0-100)
}

// New 为 targets 个目标各创建一个容量为 capacity 的缓冲区
func New(targets, capacity int) (*Aggregator, error) {
	if targets <= 0 {
		return nil, ErrNoTargets
	}

	a := &Aggregator{
		rings: make([]*history.Ring, targets),
		loss:  make([]float64, targets),
	}
	for i := range a.rings {
		r, err := history.New(capacity)
		if err != nil {
			return nil, err
		}
		a.rings[i] = r
	}
	return a, nil
}

// Record 追加一个样本（true表示丢包）并重新计算该目标的丢包率
func (a *Aggregator) Record(id int, lost bool) {
	r := a.rings[id]
	r.Set(lost)

	avg, err := r.Average(0, r.Window())
	if err != nil {
		// 刚写入过样本，窗口不可能为空
		panic(fmt.Sprintf("loss: 目标 %d 的平均值计算失败: %v", id, err))
	}
	a.loss[id] = avg * 100
}

// Loss 返回目标最近一次计算的丢包率，没有样本时为0
func (a *Aggregator) Loss(id int) float64 {
	return a.loss[id]
}

// Samples 返回目标当前的逻辑窗口大小
func (a *Aggregator) Samples(id int) int {
	return a.rings[id].Window()
}

// Capacity 返回滚动窗口容量
func (a *Aggregator) Capacity() int {
	return a.rings[0].Cap()
}

// Len 返回目标数量
func (a *Aggregator) Len() int {
	return len(a.rings)
}
