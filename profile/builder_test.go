package profile

import (
	"math"
	"testing"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/matrix"
)

func catalogFixture() []*core.Product {
	return []*core.Product{
		{ID: "p1", Name: "Basmati Rice", Category: "grains", Brand: "daawat", MRP: 100},
		{ID: "p2", Name: "Brown Rice", Category: "grains", Brand: "daawat", MRP: 120},
		{ID: "p3", Name: "Sunflower Oil", Category: "oils", Brand: "fortune", MRP: 200},
		{ID: "p4", Name: "Mustard Oil", Category: "oils", Brand: "fortune", MRP: 180},
		{ID: "p5", Name: "Green Tea", Category: "beverages", Brand: "lipton", MRP: 300},
	}
}

func TestBuilder_CategoryBrandWeights(t *testing.T) {
	feats := (&feature.Extractor{}).Extract(catalogFixture())
	m := matrix.New()
	m.Add("u1", "p1", 3.0)
	m.Add("u1", "p2", 1.0)
	m.Add("u1", "p3", 2.0)

	set := (&Builder{}).Build(m, feats, map[string]*core.UserMeta{
		"u1": {ID: "u1", BusinessType: "supermarket"},
	})

	p, ok := set.Get("u1")
	if !ok {
		t.Fatal("期望画像存在")
	}
	if p.BusinessType != "supermarket" {
		t.Errorf("期望业态 supermarket，实际 %q", p.BusinessType)
	}
	if got := p.CategoryWeights["grains"]; math.Abs(got-4.0) > 1e-9 {
		t.Errorf("期望 grains 权重 4.0，实际 %v", got)
	}
	if got := p.BrandWeights["fortune"]; math.Abs(got-2.0) > 1e-9 {
		t.Errorf("期望 fortune 权重 2.0，实际 %v", got)
	}
	if math.Abs(p.TotalWeight-6.0) > 1e-9 {
		t.Errorf("期望总权重 6.0，实际 %v", p.TotalWeight)
	}
}

func TestBuilder_DiversityScore(t *testing.T) {
	feats := (&feature.Extractor{}).Extract(catalogFixture())
	m := matrix.New()
	// 触达 2 个类目，目录共 3 个类目
	m.Add("u1", "p1", 1)
	m.Add("u1", "p3", 1)

	set := (&Builder{}).Build(m, feats, nil)
	p, _ := set.Get("u1")

	want := 2.0 / 3.0
	if math.Abs(p.DiversityScore-want) > 1e-9 {
		t.Errorf("期望多样性 %v，实际 %v", want, p.DiversityScore)
	}
}

func TestBuilder_LoyaltyScore(t *testing.T) {
	feats := (&feature.Extractor{}).Extract(catalogFixture())

	t.Run("单一品牌忠诚度为 1", func(t *testing.T) {
		m := matrix.New()
		m.Add("u1", "p1", 2)
		m.Add("u1", "p2", 3)
		set := (&Builder{}).Build(m, feats, nil)
		p, _ := set.Get("u1")
		if math.Abs(p.LoyaltyScore-1.0) > 1e-9 {
			t.Errorf("期望忠诚度 1.0，实际 %v", p.LoyaltyScore)
		}
	})

	t.Run("无品牌交互忠诚度为 0", func(t *testing.T) {
		noBrand := []*core.Product{{ID: "x1", Name: "Loose Grain", Category: "grains", MRP: 50}}
		f := (&feature.Extractor{}).Extract(noBrand)
		m := matrix.New()
		m.Add("u1", "x1", 1)
		set := (&Builder{}).Build(m, f, nil)
		p, _ := set.Get("u1")
		if p.LoyaltyScore != 0 {
			t.Errorf("期望忠诚度 0，实际 %v", p.LoyaltyScore)
		}
	})
}

func TestPriceRange(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		lo, hi float64
	}{
		{"无样本", nil, 0, 0},
		{"样本不足退化为宽区间", []float64{100, 200}, 50, 400},
		{"四分位展开", []float64{100, 100, 100, 100}, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := priceRange(tt.prices)
			if math.Abs(lo-tt.lo) > 1e-9 || math.Abs(hi-tt.hi) > 1e-9 {
				t.Errorf("期望区间 [%v, %v]，实际 [%v, %v]", tt.lo, tt.hi, lo, hi)
			}
		})
	}
}

func TestSet_PatchCreatesAndAccumulates(t *testing.T) {
	set := NewSet()
	set.Patch("u1", "grains", "daawat", 3.0)
	set.Patch("u1", "grains", "", 1.0)

	p, ok := set.Get("u1")
	if !ok {
		t.Fatal("Patch 应创建缺失的画像")
	}
	if math.Abs(p.CategoryWeights["grains"]-4.0) > 1e-9 {
		t.Errorf("期望 grains 权重 4.0，实际 %v", p.CategoryWeights["grains"])
	}
	if math.Abs(p.TotalWeight-4.0) > 1e-9 {
		t.Errorf("期望总权重 4.0，实际 %v", p.TotalWeight)
	}
}
