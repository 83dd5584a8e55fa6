package loss

import (
	"errors"
	"testing"

	"github.com/Kevin-Rudy/lossping/pkg/history"
)

// TestNewAggregatorValidation 测试构造参数校验
func TestNewAggregatorValidation(t *testing.T) {
	if _, err := New(0, 10); !errors.Is(err, ErrNoTargets) {
		t.Errorf("Expected ErrNoTargets, got %v", err)
	}

	if _, err := New(3, 0); !errors.Is(err, history.ErrInvalidCapacity) {
		t.Errorf("Expected ErrInvalidCapacity, got %v", err)
	}

	a, err := New(3, 300)
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != 3 || a.Capacity() != 300 {
		t.Errorf("Expected 3 targets with capacity 300, got %d/%d", a.Len(), a.Capacity())
	}
}

// TestLossBeforeSamples 没有样本时丢包率为0
func TestLossBeforeSamples(t *testing.T) {
	a, _ := New(2, 4)
	for id := 0; id < 2; id++ {
		if a.Loss(id) != 0 {
			t.Errorf("target %d: expected 0 loss, got %f", id, a.Loss(id))
		}
		if a.Samples(id) != 0 {
			t.Errorf("target %d: expected 0 samples, got %d", id, a.Samples(id))
		}
	}
}

// TestScenarioA 容量4，记录 [true, false, false, false]，丢包率为25%
func TestScenarioA(t *testing.T) {
	a, _ := New(1, 4)
	for _, lost := range []bool{true, false, false, false} {
		a.Record(0, lost)
	}

	if a.Loss(0) != 25.0 {
		t.Errorf("Expected 25.0, got %f", a.Loss(0))
	}
}

// TestScenarioB 第5个样本覆盖下标0，丢包率只反映当前4个样本
func TestScenarioB(t *testing.T) {
	a, _ := New(1, 4)
	for _, lost := range []bool{true, false, false, false} {
		a.Record(0, lost)
	}

	// 覆盖最早的 true，窗口变为 [true(new), false, false, false]
	a.Record(0, true)
	if a.Loss(0) != 25.0 {
		t.Errorf("Expected 25.0 after evicting index 0, got %f", a.Loss(0))
	}
	if a.Samples(0) != 4 {
		t.Errorf("Expected window 4, got %d", a.Samples(0))
	}

	// 继续覆盖下标1的 false，窗口变为 [true, true, false, false]
	a.Record(0, true)
	if a.Loss(0) != 50.0 {
		t.Errorf("Expected 50.0, got %f", a.Loss(0))
	}
}

// TestWarmupAverage 预热阶段只按已记录的样本计算
func TestWarmupAverage(t *testing.T) {
	a, _ := New(1, 300)
	a.Record(0, true)
	if a.Loss(0) != 100.0 {
		t.Errorf("Expected 100.0 with single lost sample, got %f", a.Loss(0))
	}

	a.Record(0, false)
	if a.Loss(0) != 50.0 {
		t.Errorf("Expected 50.0, got %f", a.Loss(0))
	}
}

// TestTargetsIsolated 记录一个目标不影响其他目标
func TestTargetsIsolated(t *testing.T) {
	a, _ := New(3, 10)
	a.Record(1, true)
	a.Record(1, true)

	if a.Loss(0) != 0 || a.Loss(2) != 0 {
		t.Errorf("Other targets should be untouched, got %f and %f", a.Loss(0), a.Loss(2))
	}
	if a.Samples(0) != 0 || a.Samples(2) != 0 {
		t.Error("Other targets should have no samples")
	}
	if a.Loss(1) != 100.0 {
		t.Errorf("Expected 100.0 for target 1, got %f", a.Loss(1))
	}
}
