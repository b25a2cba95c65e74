package recall

import (
	"context"
	"testing"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/store"
)

func trendingFeatures() *feature.Store {
	return (&feature.Extractor{}).Extract([]*core.Product{
		{ID: "p1", Name: "Rice", PurchaseCount: 100, ViewCount: 50},
		{ID: "p2", Name: "Oil", PurchaseCount: 10, ViewCount: 5},
		{ID: "p3", Name: "Tea", PurchaseCount: 100, ViewCount: 50}, // 与 p1 同热度
		{ID: "p4", Name: "Salt"},
	})
}

func TestTrending_DeterministicOrdering(t *testing.T) {
	r := &Trending{Features: trendingFeatures(), TopK: 3}

	first, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	second, _ := r.Recall(context.Background(), nil)

	// 热度降序，同热度按 ID 升序；两次调用完全一致
	want := []string{"p1", "p3", "p2"}
	for i, id := range want {
		if first[i].ID != id {
			t.Fatalf("期望顺序 %v，实际 %v", want, itemIDs(first))
		}
		if second[i].ID != id {
			t.Fatalf("两次调用顺序应一致，实际 %v vs %v", itemIDs(first), itemIDs(second))
		}
	}
}

func TestTrending_PrefersStoreSnapshot(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	// 缓存里倒过来的热门榜，且含一个已下架商品
	kv.ZAdd(ctx, "trend", 0.9, "p4")
	kv.ZAdd(ctx, "trend", 0.5, "p2")
	kv.ZAdd(ctx, "trend", 0.8, "gone")

	r := &Trending{Features: trendingFeatures(), Store: kv, Key: "trend", TopK: 5}
	items, err := r.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	want := []string{"p4", "p2"}
	if len(items) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, itemIDs(items))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("期望 %v，实际 %v", want, itemIDs(items))
		}
	}
}

// 榜首恰好已下架时不能亏位：超量拉取后剔除，仍要凑满 TopK 条。
func TestTrending_StoreBackfillsDelisted(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	kv.ZAdd(ctx, "trend", 0.9, "gone")
	kv.ZAdd(ctx, "trend", 0.5, "p2")
	kv.ZAdd(ctx, "trend", 0.4, "p1")

	r := &Trending{Features: trendingFeatures(), Store: kv, Key: "trend", TopK: 2}
	items, err := r.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	want := []string{"p2", "p1"}
	if len(items) != len(want) {
		t.Fatalf("期望凑满 %v，实际 %v", want, itemIDs(items))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("期望 %v，实际 %v", want, itemIDs(items))
		}
	}
	if items[0].Score <= items[1].Score {
		t.Errorf("名次折算分数应保持降序，实际 %v vs %v", items[0].Score, items[1].Score)
	}
}

func TestTrending_EmptyCatalog(t *testing.T) {
	r := &Trending{Features: (&feature.Extractor{}).Extract(nil)}
	items, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("空目录应返回空结果，实际 %v", itemIDs(items))
	}
}
