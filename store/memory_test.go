package store

import (
	"context"
	"testing"

	"github.com/rushteam/reco/core"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("缺失 key 应返回 NOT_FOUND，实际 %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("期望读到 v，实际 %q err=%v", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Error("删除后应读不到")
	}
}

func TestMemoryStore_ZSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.ZAdd(ctx, "trend", 0.3, "p2")
	s.ZAdd(ctx, "trend", 0.9, "p1")
	s.ZAdd(ctx, "trend", 0.3, "p0") // 与 p2 同分

	got, err := s.ZRange(ctx, "trend", 0, -1)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	// 分数降序，同分按 member 升序
	want := []string{"p1", "p0", "p2"}
	for i, m := range want {
		if got[i] != m {
			t.Fatalf("期望 %v，实际 %v", want, got)
		}
	}

	top, _ := s.ZRange(ctx, "trend", 0, 1)
	if len(top) != 2 || top[0] != "p1" {
		t.Errorf("区间截取不符: %v", top)
	}

	score, err := s.ZScore(ctx, "trend", "p1")
	if err != nil || score != 0.9 {
		t.Errorf("期望分数 0.9，实际 %v err=%v", score, err)
	}
	if _, err := s.ZScore(ctx, "trend", "nope"); !core.IsStoreNotFound(err) {
		t.Errorf("缺失成员应返回 NOT_FOUND，实际 %v", err)
	}

	// Delete 同时清空 zset
	s.Delete(ctx, "trend")
	if got, _ := s.ZRange(ctx, "trend", 0, -1); len(got) != 0 {
		t.Errorf("删除后 zset 应为空，实际 %v", got)
	}
}
