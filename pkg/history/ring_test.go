package history

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// TestNewInvalidCapacity 测试非法容量
func TestNewInvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1, -300} {
		if _, err := New(c); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("capacity %d: expected ErrInvalidCapacity, got %v", c, err)
		}
	}

	r, err := New(1)
	if err != nil {
		t.Fatalf("capacity 1 should be valid: %v", err)
	}
	if r.Cap() != 1 || r.Window() != 0 || r.Wrapped() {
		t.Errorf("unexpected initial state: cap=%d window=%d wrapped=%v", r.Cap(), r.Window(), r.Wrapped())
	}
}

// TestAverageMatchesExactFraction 对任意容量与 N<=C 的序列，平均值等于精确比例
func TestAverageMatchesExactFraction(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, capacity := range []int{1, 2, 7, 63, 64, 65, 128, 300, 1000} {
		for _, n := range []int{1, capacity / 2, capacity} {
			if n == 0 {
				continue
			}
			r, err := New(capacity)
			if err != nil {
				t.Fatal(err)
			}

			trues := 0
			for i := 0; i < n; i++ {
				v := rng.Intn(3) == 0
				if v {
					trues++
				}
				r.Set(v)
			}

			got, err := r.Average(0, n)
			if err != nil {
				t.Fatalf("capacity=%d n=%d: %v", capacity, n, err)
			}
			want := float64(trues) / float64(n)
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("capacity=%d n=%d: expected %f, got %f", capacity, n, want, got)
			}
		}
	}
}

// TestWrapOverwritesIndexZero 写满后再写一个值会覆盖下标0
func TestWrapOverwritesIndexZero(t *testing.T) {
	const capacity = 5
	r, _ := New(capacity)

	r.Set(true)
	for i := 1; i < capacity; i++ {
		r.Set(false)
	}

	if !r.Wrapped() {
		t.Error("ring should be wrapped after capacity writes")
	}
	if r.Window() != capacity {
		t.Errorf("Expected window=%d, got %d", capacity, r.Window())
	}

	before, _ := r.Average(0, capacity)
	if before != 0.2 {
		t.Errorf("Expected 0.2 before overwrite, got %f", before)
	}

	// 覆盖下标0处的 true
	r.Set(false)
	after, _ := r.Average(0, capacity)
	if after != 0 {
		t.Errorf("Expected 0 after overwrite, got %f", after)
	}
	if first, _ := r.Count(0, 1); first != 0 {
		t.Errorf("Expected index 0 to be cleared, got %d", first)
	}
}

// TestWarmupWindow 预热阶段不允许读取未写入的位置
func TestWarmupWindow(t *testing.T) {
	r, _ := New(10)
	r.Set(true)
	r.Set(true)
	r.Set(false)

	if r.Window() != 3 {
		t.Errorf("Expected window=3, got %d", r.Window())
	}

	if _, err := r.Average(0, 4); !errors.Is(err, ErrRangeOutOfWindow) {
		t.Errorf("Expected ErrRangeOutOfWindow, got %v", err)
	}

	avg, err := r.Average(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(avg-2.0/3.0) > 1e-12 {
		t.Errorf("Expected 2/3, got %f", avg)
	}
}

// TestEmptyRange 空区间返回 ErrNoData 而不是除零
func TestEmptyRange(t *testing.T) {
	r, _ := New(4)

	if _, err := r.Average(0, 0); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData on empty ring, got %v", err)
	}

	r.Set(true)
	if _, err := r.Average(1, 1); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData on empty range, got %v", err)
	}
	if _, err := r.Percent(0, 0); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData from Percent, got %v", err)
	}
}

// TestInvalidRange 测试倒置和负数区间
func TestInvalidRange(t *testing.T) {
	r, _ := New(4)
	for i := 0; i < 4; i++ {
		r.Set(i%2 == 0)
	}

	if _, err := r.Average(-1, 2); !errors.Is(err, ErrRangeOutOfWindow) {
		t.Errorf("Expected ErrRangeOutOfWindow for negative start, got %v", err)
	}
	if _, err := r.Average(3, 2); !errors.Is(err, ErrRangeOutOfWindow) {
		t.Errorf("Expected ErrRangeOutOfWindow for reversed range, got %v", err)
	}
}

// TestAverageIdempotent 没有写入时重复查询结果不变
func TestAverageIdempotent(t *testing.T) {
	r, _ := New(300)
	for i := 0; i < 150; i++ {
		r.Set(i%7 == 0)
	}

	first, _ := r.Average(0, r.Window())
	for i := 0; i < 10; i++ {
		again, _ := r.Average(0, r.Window())
		if again != first {
			t.Fatalf("Average changed without Set: %f != %f", again, first)
		}
	}
}

// TestPercentResolution 整数百分比会丢失精度，浮点版本不会
func TestPercentResolution(t *testing.T) {
	r, _ := New(300)
	r.Set(true)
	for i := 1; i < 300; i++ {
		r.Set(false)
	}

	p, _ := r.Percent(0, 300)
	if p != 0 {
		t.Errorf("Expected integer percent 0, got %d", p)
	}

	avg, _ := r.Average(0, 300)
	if math.Abs(avg*100-1.0/3.0) > 1e-9 {
		t.Errorf("Expected ~0.333%%, got %f%%", avg*100)
	}
}

// TestCountAcrossWords 测试跨越字边界的子区间统计
func TestCountAcrossWords(t *testing.T) {
	r, _ := New(200)
	for i := 0; i < 200; i++ {
		r.Set(true)
	}

	cases := []struct{ start, end, want int }{
		{0, 200, 200},
		{60, 70, 10},
		{63, 65, 2},
		{64, 128, 64},
		{127, 129, 2},
		{199, 200, 1},
	}
	for _, c := range cases {
		got, err := r.Count(c.start, c.end)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("Count(%d, %d): expected %d, got %d", c.start, c.end, c.want, got)
		}
	}
}

// BenchmarkRingAverage 基准测试整窗平均值计算
func BenchmarkRingAverage(b *testing.B) {
	r, _ := New(300)
	for i := 0; i < 300; i++ {
		r.Set(i%3 == 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Set(i%5 == 0)
		_, _ = r.Average(0, r.Window())
	}
}
