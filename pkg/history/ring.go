// Package history 实现了按位压缩的固定容量环形缓冲区
// 用于记录每个目标最近若干次探测的布尔结果
package history

import (
	"errors"
	"math/bits"
)

const wordBits = 64

var (
	// ErrInvalidCapacity 容量不合法（配置错误，构造时致命）
	ErrInvalidCapacity = errors.New("history: 容量必须大于0")

	// ErrRangeOutOfWindow 查询区间超出逻辑窗口
	// 调度器自身的调用方式不会触发，出现即为程序错误
	ErrRangeOutOfWindow = errors.New("history: 查询区间超出逻辑窗口")

	// ErrNoData 查询区间为空，无法计算平均值
	ErrNoData = errors.New("history: 区间内没有数据")
)

// Ring 按位压缩的环形缓冲区
// 只允许单写者顺序追加，不是并发安全的
type Ring struct {
	capacity int
	words    []uint64
	cursor   int  // 下一次写入的位置，取值 [0, capacity)
	wrapped  bool // 写指针是否已经完整绕行一圈
}

// New 创建指定容量的环形缓冲区
func New(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	return &Ring{
		capacity: capacity,
		words:    make([]uint64, (capacity+wordBits-1)/wordBits),
	}, nil
}

// Set 在写指针处追加一个值，写满后覆盖最旧的数据
func (r *Ring) Set(v bool) {
	w, off := r.cursor/wordBits, uint(r.cursor%wordBits)
	if v {
		r.words[w] |= 1 << off
	} else {
		r.words[w] &^= 1 << off
	}

	r.cursor++
	if r.cursor == r.capacity {
		r.cursor = 0
		r.wrapped = true
	}
}

// Cap 返回缓冲区容量
func (r *Ring) Cap() int {
	return r.capacity
}

// Wrapped 返回缓冲区是否已经写满过一次
func (r *Ring) Wrapped() bool {
	return r.wrapped
}

// Window 返回逻辑窗口大小
// 预热阶段为已写入的数量，写满一圈后恒为容量
func (r *Ring) Window() int {
	if r.wrapped {
		return r.capacity
	}
	return r.cursor
}

// Count 统计区间 [start, end) 内为 true 的数量
func (r *Ring) Count(start, end int) (int, error) {
	if err := r.checkRange(start, end); err != nil {
		return 0, err
	}
	return r.count(start, end), nil
}

// Average 返回区间 [start, end) 内 true 所占的比例(0-1)
func (r *Ring) Average(start, end int) (float64, error) {
	n, err := r.Count(start, end)
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(end-start), nil
}

// Percent 返回区间 [start, end) 内 true 所占的整数百分比
// 精度受窗口大小限制，需要更高分辨率时使用 Average
func (r *Ring) Percent(start, end int) (int, error) {
	n, err := r.Count(start, end)
	if err != nil {
		return 0, err
	}
	return n * 100 / (end - start), nil
}

// checkRange 校验查询区间，禁止读取从未写入的位置
func (r *Ring) checkRange(start, end int) error {
	if start < 0 || start > end || end > r.Window() {
		return ErrRangeOutOfWindow
	}
	if start == end {
		return ErrNoData
	}
	return nil
}

// count 逐字统计区间内置位的数量
func (r *Ring) count(start, end int) int {
	n := 0
	for start < end {
		w, off := start/wordBits, start%wordBits
		span := min(wordBits-off, end-start)
		mask := (^uint64(0) >> uint(wordBits-span)) << uint(off)
		n += bits.OnesCount64(r.words[w] & mask)
		start += span
	}
	return n
}
