package recall

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/matrix"
	"github.com/rushteam/reco/profile"
)

func contentFixture() (*feature.Store, *matrix.Matrix, *profile.Set) {
	products := []*core.Product{
		{ID: "a", Name: "Galaxy Phone", Description: "samsung smartphone",
			Category: "electronics", Brand: "samsung", MRP: 100},
		{ID: "b", Name: "Galaxy Tab", Description: "samsung tablet",
			Category: "electronics", Brand: "samsung", MRP: 110},
		{ID: "c", Name: "Basmati Rice", Description: "premium rice",
			Category: "grains", Brand: "daawat", MRP: 100},
	}
	feats := (&feature.Extractor{}).Extract(products)

	m := matrix.New()
	m.Add("u1", "a", 3)

	profs := (&profile.Builder{}).Build(m, feats, nil)
	return feats, m, profs
}

// 买家只买过 samsung 电子产品 a：同品牌同类目的 b 必须排在
// 异类目的 c 前面，已交互的 a 绝不出现。
func TestContent_BrandAndCategoryOrdering(t *testing.T) {
	feats, m, profs := contentFixture()
	r := &Content{Features: feats, Matrix: m, Profile: profs.Get}

	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("期望 2 个候选，实际 %v", itemIDs(items))
	}
	if items[0].ID != "b" || items[1].ID != "c" {
		t.Errorf("期望顺序 [b c]，实际 %v", itemIDs(items))
	}
	for _, it := range items {
		if it.ID == "a" {
			t.Error("已交互商品 a 不应出现")
		}
	}
	if v := items[0].LabelValue("reason"); v != "brand_match" {
		t.Errorf("期望 b 的理由为 brand_match，实际 %q", v)
	}
}

func TestContent_TextSimilarityFeature(t *testing.T) {
	feats, m, profs := contentFixture()
	r := &Content{Features: feats, Matrix: m, Profile: profs.Get}

	items, _ := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if len(items) == 0 {
		t.Fatal("期望有候选")
	}
	// b 与偏好向量共享 samsung 词项，文本相似度应为正
	if sim := items[0].Features["text_similarity"]; sim <= 0 {
		t.Errorf("期望 b 的文本相似度为正，实际 %v", sim)
	}
}

func TestContent_MinScoreFloor(t *testing.T) {
	feats, m, profs := contentFixture()
	r := &Content{Features: feats, Matrix: m, Profile: profs.Get, MinScore: 0.5}

	items, _ := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	for _, it := range items {
		if it.ID == "c" {
			t.Error("低于分数下限的 c 不应出现")
		}
	}
}

func TestContent_PriceProximity(t *testing.T) {
	feats := (&feature.Extractor{}).Extract([]*core.Product{
		{ID: "near", Name: "Near", Category: "grains", Brand: "daawat", MRP: 120},
		{ID: "out", Name: "Out", Category: "grains", Brand: "daawat", MRP: 160},
	})
	prof := core.NewUserProfile("u1")
	prof.AvgPrice = 100
	prof.PriceMin = 50
	prof.PriceMax = 150

	tests := []struct {
		name      string
		productID string
		want      float64
	}{
		{"区间内按均价线性衰减", "near", 0.8},
		{"超出画像价格区间记 0", "out", 0},
		{"无特征时中性", "ghost", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := priceProximity(prof, tt.productID, feats); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

func TestContent_ColdStart(t *testing.T) {
	feats, m, profs := contentFixture()
	r := &Content{Features: feats, Matrix: m, Profile: profs.Get}

	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "nobody"})
	if err != nil {
		t.Fatalf("冷启动应静默降级: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("无画像用户应返回空结果，实际 %v", itemIDs(items))
	}
}
