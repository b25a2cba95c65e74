package matrix

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/reco/core"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMatrix_AddAccumulates(t *testing.T) {
	m := New()
	m.Add("u1", "p1", 3.0)
	m.Add("u1", "p1", 1.5)

	w, ok := m.Weight("u1", "p1")
	if !ok {
		t.Fatal("期望单元格存在")
	}
	if !almostEqual(w, 4.5) {
		t.Errorf("期望加法累积得到 4.5，实际 %v", w)
	}
}

func TestMatrix_ShapeGrows(t *testing.T) {
	m := New()
	m.Add("u1", "p1", 1)
	m.Add("u2", "p2", 1)
	m.Add("u1", "p3", 1)

	users, products := m.Shape()
	if users != 2 || products != 3 {
		t.Errorf("期望形状 (2, 3)，实际 (%d, %d)", users, products)
	}

	// 新商品出现后，旧用户的行也要扩到相同列数
	row, ok := m.UserRow("u2")
	if !ok || len(row) != 3 {
		t.Errorf("期望 u2 行长度 3，实际 %d", len(row))
	}
}

func TestMatrix_UnknownLookup(t *testing.T) {
	m := New()
	m.Add("u1", "p1", 1)

	if _, ok := m.Weight("u1", "nope"); ok {
		t.Error("未知商品不应返回权重")
	}
	if _, ok := m.UserRow("nope"); ok {
		t.Error("未知用户不应有行")
	}
	if got := m.UserInteractions("nope"); got != nil {
		t.Errorf("未知用户的交互应为 nil，实际 %v", got)
	}
}

func TestBuilder_DecayedAccumulation(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	products := map[string]*core.Product{
		"p1": {ID: "p1"},
	}

	tests := []struct {
		name         string
		interactions []*core.Interaction
		want         float64
	}{
		{
			name: "当天购买不衰减",
			interactions: []*core.Interaction{
				{UserID: "u1", ProductID: "p1", Kind: core.InteractionPurchase, Timestamp: now},
			},
			want: 3.0,
		},
		{
			name: "30 天前的购买按指数衰减",
			interactions: []*core.Interaction{
				{UserID: "u1", ProductID: "p1", Kind: core.InteractionPurchase,
					Timestamp: now.Add(-core.DecayHalflife)},
			},
			want: 3.0 * math.Exp(-1),
		},
		{
			name: "多条交互加法累积",
			interactions: []*core.Interaction{
				{UserID: "u1", ProductID: "p1", Kind: core.InteractionPurchase, Timestamp: now},
				{UserID: "u1", ProductID: "p1", Kind: core.InteractionView,
					Duration: 45 * time.Second, Timestamp: now},
			},
			want: 3.0 + 1.5,
		},
		{
			name: "购买数量放大",
			interactions: []*core.Interaction{
				{UserID: "u1", ProductID: "p1", Kind: core.InteractionPurchase,
					Quantity: 4, Timestamp: now},
			},
			want: 12.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Builder{Now: func() time.Time { return now }}
			m := b.Build(tt.interactions, products, nil)

			w, ok := m.Weight("u1", "p1")
			if !ok {
				t.Fatal("期望单元格存在")
			}
			if !almostEqual(w, tt.want) {
				t.Errorf("期望权重 %v，实际 %v", tt.want, w)
			}
		})
	}
}

func TestBuilder_SkipsOutOfCatalog(t *testing.T) {
	now := time.Now()
	products := map[string]*core.Product{"p1": {ID: "p1"}}
	interactions := []*core.Interaction{
		{UserID: "u1", ProductID: "p1", Kind: core.InteractionView, Timestamp: now},
		{UserID: "u1", ProductID: "ghost", Kind: core.InteractionPurchase, Timestamp: now},
		{UserID: "", ProductID: "p1", Kind: core.InteractionView, Timestamp: now},
	}

	b := &Builder{Now: func() time.Time { return now }}
	m := b.Build(interactions, products, nil)

	users, cols := m.Shape()
	if users != 1 || cols != 1 {
		t.Errorf("目录外商品与空用户应被跳过，期望形状 (1, 1)，实际 (%d, %d)", users, cols)
	}
}

func TestBuilder_SkipsUnknownUsers(t *testing.T) {
	now := time.Now()
	products := map[string]*core.Product{"p1": {ID: "p1"}}
	known := map[string]struct{}{"u1": {}}
	interactions := []*core.Interaction{
		{UserID: "u1", ProductID: "p1", Kind: core.InteractionView, Timestamp: now},
		{UserID: "stranger", ProductID: "p1", Kind: core.InteractionPurchase, Timestamp: now},
	}

	b := &Builder{Now: func() time.Time { return now }}
	m := b.Build(interactions, products, known)

	if m.HasUser("stranger") {
		t.Error("用户表之外的买家不应进入矩阵")
	}
	if !m.HasUser("u1") {
		t.Error("已知买家应进入矩阵")
	}
}

func TestMatrix_OnlineIncrementReadBack(t *testing.T) {
	now := time.Now()
	products := map[string]*core.Product{"p1": {ID: "p1"}}
	b := &Builder{Now: func() time.Time { return now }}
	m := b.Build([]*core.Interaction{
		{UserID: "u1", ProductID: "p1", Kind: core.InteractionView, Timestamp: now},
	}, products, nil)

	in := &core.Interaction{Kind: core.InteractionPurchase, Timestamp: now}
	m.Add("u1", "p1", in.BaseWeight())

	w, _ := m.Weight("u1", "p1")
	if !almostEqual(w, 1.0+3.0) {
		t.Errorf("在线增量应精确累加，期望 4.0，实际 %v", w)
	}

	m.Add("u1", "p1", in.BaseWeight())
	w, _ = m.Weight("u1", "p1")
	if !almostEqual(w, 7.0) {
		t.Errorf("二次增量应继续累加，期望 7.0，实际 %v", w)
	}
}
