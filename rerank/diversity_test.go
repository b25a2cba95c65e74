package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
)

func scoredItem(id string, score float64) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	return it
}

func diversityFeatures() *feature.Store {
	return (&feature.Extractor{}).Extract([]*core.Product{
		{ID: "g1", Category: "grains", Brand: "daawat"},
		{ID: "g2", Category: "grains", Brand: "daawat"},
		{ID: "g3", Category: "grains", Brand: "daawat"},
		{ID: "g4", Category: "grains", Brand: "india-gate"},
		{ID: "o1", Category: "oils", Brand: "fortune"},
		{ID: "o2", Category: "oils", Brand: "fortune"},
		{ID: "b1", Category: "beverages", Brand: "lipton"},
		{ID: "b2", Category: "beverages", Brand: "tata"},
	})
}

func TestDiversity_FirstHalfCategoryCap(t *testing.T) {
	feats := diversityFeatures()
	// 高分全是 grains，多样性约束应把第三个 grains 推出前半段
	items := []*core.Item{
		scoredItem("g1", 1.0),
		scoredItem("g2", 0.9),
		scoredItem("g3", 0.8),
		scoredItem("o1", 0.7),
		scoredItem("b1", 0.6),
		scoredItem("o2", 0.5),
	}

	n := &Diversity{Features: feats, Limit: 6}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	// 前半段（3 个）内 grains 不超过 2 个
	grains := 0
	for _, it := range out[:3] {
		f, _ := feats.Get(it.ID)
		if f.Category == "grains" {
			grains++
		}
	}
	if grains > 2 {
		t.Errorf("前半段 grains 超过上限：%v", ids(out[:3]))
	}
	if len(out) != 6 {
		t.Errorf("被跳过的候选应回填，期望 6 个，实际 %d", len(out))
	}
}

func TestDiversity_BrandCap(t *testing.T) {
	feats := diversityFeatures()
	items := []*core.Item{
		scoredItem("g1", 1.0), // daawat
		scoredItem("g2", 0.9), // daawat
		scoredItem("g3", 0.8), // daawat，品牌超限
		scoredItem("g4", 0.7), // india-gate
		scoredItem("o1", 0.6),
		scoredItem("b1", 0.5),
	}

	n := &Diversity{Features: feats, Limit: 6}
	out, _ := n.Process(context.Background(), nil, items)

	for _, it := range out[:3] {
		if it.ID == "g3" {
			t.Errorf("第三个 daawat 不应留在前半段：%v", ids(out[:3]))
		}
	}
}

func TestDiversity_HomogeneousPoolStillFills(t *testing.T) {
	feats := (&feature.Extractor{}).Extract([]*core.Product{
		{ID: "g1", Category: "grains", Brand: "daawat"},
		{ID: "g2", Category: "grains", Brand: "daawat"},
		{ID: "g3", Category: "grains", Brand: "daawat"},
		{ID: "g4", Category: "grains", Brand: "daawat"},
	})
	items := []*core.Item{
		scoredItem("g1", 1.0),
		scoredItem("g2", 0.9),
		scoredItem("g3", 0.8),
		scoredItem("g4", 0.7),
	}

	n := &Diversity{Features: feats, Limit: 4}
	out, _ := n.Process(context.Background(), nil, items)
	if len(out) != 4 {
		t.Errorf("同质候选池约束应放开回填，期望 4 个，实际 %d", len(out))
	}
}

func TestDiversity_BusinessTypeBoost(t *testing.T) {
	feats := (&feature.Extractor{}).Extract([]*core.Product{
		{ID: "x1", Category: "grains", BusinessType: "kiosk"},
		{ID: "x2", Category: "oils", BusinessType: "supermarket"},
	})
	items := []*core.Item{
		scoredItem("x1", 0.5),
		scoredItem("x2", 0.55),
	}
	rctx := &core.RecommendContext{
		UserID: "u1",
		User:   &core.UserProfile{UserID: "u1", BusinessType: "kiosk"},
	}

	n := &Diversity{Features: feats, Limit: 2, BusinessTypeBoost: 1.2}
	out, _ := n.Process(context.Background(), rctx, items)

	// x1 被加权到 0.6，应反超 x2
	if out[0].ID != "x1" {
		t.Errorf("业态匹配商品应被提权到首位，实际 %v", ids(out))
	}
	if v := out[0].LabelValue("boost"); v != "business_type" {
		t.Errorf("期望 boost 标签，实际 %q", v)
	}
}

func TestTopN_Truncates(t *testing.T) {
	items := []*core.Item{scoredItem("a", 3), scoredItem("b", 2), scoredItem("c", 1)}
	out, err := (&TopN{N: 2}).Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("期望 [a b]，实际 %v", ids(out))
	}
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
