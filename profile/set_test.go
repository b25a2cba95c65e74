package profile

import (
	"math"
	"sync"
	"testing"
)

func TestSet_GetReturnsStableSnapshot(t *testing.T) {
	set := NewSet()
	set.Patch("u1", "grains", "daawat", 3.0)

	before, ok := set.Get("u1")
	if !ok {
		t.Fatal("期望画像存在")
	}

	set.Patch("u1", "oils", "fortune", 2.0)

	// 旧快照不被后续修补改动
	if _, ok := before.CategoryWeights["oils"]; ok {
		t.Error("已取走的快照不应看到后续修补")
	}
	if math.Abs(before.TotalWeight-3.0) > 1e-9 {
		t.Errorf("旧快照总权重应保持 3.0，实际 %v", before.TotalWeight)
	}

	after, _ := set.Get("u1")
	if math.Abs(after.TotalWeight-5.0) > 1e-9 {
		t.Errorf("新快照应累加到 5.0，实际 %v", after.TotalWeight)
	}
	if math.Abs(after.CategoryWeights["grains"]-3.0) > 1e-9 {
		t.Errorf("写时复制应保留旧权重，实际 %v", after.CategoryWeights)
	}
}

// 并发修补与读取同一画像：读者拿到的快照上遍历权重 map
// 必须与写入方无数据竞争（配合 -race 验证）。
func TestSet_ConcurrentPatchAndRead(t *testing.T) {
	set := NewSet()
	set.Patch("u1", "grains", "daawat", 1.0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				set.Patch("u1", "grains", "daawat", 0.5)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				p, ok := set.Get("u1")
				if !ok {
					continue
				}
				var sum float64
				for _, w := range p.CategoryWeights {
					sum += w
				}
				for _, w := range p.BrandWeights {
					sum += w
				}
				_ = sum + p.TotalWeight
			}
		}()
	}
	wg.Wait()

	p, _ := set.Get("u1")
	want := 1.0 + 8*200*0.5
	if math.Abs(p.TotalWeight-want) > 1e-6 {
		t.Errorf("并发修补应全部生效，期望 %v，实际 %v", want, p.TotalWeight)
	}
}
