package recall

import (
	"context"
	"testing"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/matrix"
)

func TestCollaborative_RecommendsNeighborProducts(t *testing.T) {
	m := matrix.New()
	// u1 与 u2 同买 p1/p2，u2 还买了 p3
	m.Add("u1", "p1", 3)
	m.Add("u1", "p2", 3)
	m.Add("u2", "p1", 3)
	m.Add("u2", "p2", 3)
	m.Add("u2", "p3", 3)

	r := &Collaborative{Matrix: m}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p3" {
		t.Fatalf("期望只推荐 p3，实际 %v", itemIDs(items))
	}
	if v := items[0].LabelValue("recall_source"); v != "collaborative" {
		t.Errorf("期望 recall_source 标签为 collaborative，实际 %q", v)
	}
}

func TestCollaborative_NeverReturnsOwnedProducts(t *testing.T) {
	m := matrix.New()
	m.Add("u1", "p1", 1)
	m.Add("u1", "p2", 1)
	m.Add("u2", "p1", 1)
	m.Add("u2", "p2", 5)
	m.Add("u3", "p2", 1)
	m.Add("u3", "p3", 2)

	r := &Collaborative{Matrix: m}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	for _, it := range items {
		if it.ID == "p1" || it.ID == "p2" {
			t.Errorf("已交互商品 %s 不应出现在推荐里", it.ID)
		}
	}
}

func TestCollaborative_SimilarityFloor(t *testing.T) {
	m := matrix.New()
	// 两个用户完全正交，相似度 0，低于下限
	m.Add("u1", "p1", 3)
	m.Add("u2", "p2", 3)

	r := &Collaborative{Matrix: m}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("无过线邻居时应返回空结果，实际 %v", itemIDs(items))
	}
}

func TestCollaborative_ColdStart(t *testing.T) {
	m := matrix.New()
	m.Add("u2", "p1", 1)

	r := &Collaborative{Matrix: m}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "nobody"})
	if err != nil {
		t.Fatalf("冷启动应静默降级: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("无矩阵行的用户应返回空结果，实际 %v", itemIDs(items))
	}
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
