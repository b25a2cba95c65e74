package cluster

import (
	"sort"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/profile"
)

// MinUsersForClustering 是运行分群所需的最少活跃用户数。
const MinUsersForClustering = 5

// Segments 是一代推荐结构中的买家分群结果。
// 构建后只读；在线更新不会改变簇归属（下次重建刷新）。
type Segments struct {
	// Assignment userID -> 簇编号
	Assignment map[string]int

	// Members 簇编号 -> 成员用户 ID（升序，保证确定性遍历）
	Members map[int][]string

	K int
}

// BuildSegments 在画像集合上做行为分群。
//
// 行为特征向量（均已归一化到同一量级）：
//   - 平均客单价
//   - 交互总权重
//   - 触达类目数
//   - 触达品牌数
//
// 簇数 k = min(5, 用户数/3)，且不小于 2。
// 活跃用户不足 MinUsersForClustering 时不分群，返回 nil，
// 调用方应降级到热门路径（INSUFFICIENT_DATA 语义）。
func BuildSegments(profiles *profile.Set, userIDs []string, maxPrice float64) *Segments {
	users := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := profiles.Get(id); ok {
			users = append(users, id)
		}
	}
	if len(users) < MinUsersForClustering {
		return nil
	}
	sort.Strings(users)

	var maxWeight, maxCats, maxBrands float64
	for _, id := range users {
		p, _ := profiles.Get(id)
		if p.TotalWeight > maxWeight {
			maxWeight = p.TotalWeight
		}
		if c := float64(len(p.CategoryWeights)); c > maxCats {
			maxCats = c
		}
		if b := float64(len(p.BrandWeights)); b > maxBrands {
			maxBrands = b
		}
	}
	priceNorm := maxPrice
	if priceNorm <= 0 {
		priceNorm = 1
	}
	points := make([][]float64, len(users))
	for i, id := range users {
		p, _ := profiles.Get(id)
		points[i] = behaviorVector(p, priceNorm, maxWeight, maxCats, maxBrands)
	}

	k := len(users) / 3
	if k > 5 {
		k = 5
	}
	if k < 2 {
		k = 2
	}

	km := &KMeans{K: k}
	labels := km.Fit(points)

	seg := &Segments{
		Assignment: make(map[string]int, len(users)),
		Members:    make(map[int][]string, k),
		K:          k,
	}
	for i, id := range users {
		c := labels[i]
		seg.Assignment[id] = c
		seg.Members[c] = append(seg.Members[c], id)
	}
	return seg
}

func behaviorVector(p *core.UserProfile, maxPrice, maxWeight, maxCats, maxBrands float64) []float64 {
	avgPrice := p.AvgPrice / maxPrice
	if avgPrice > 1 {
		avgPrice = 1
	}
	ratio := func(v, max float64) float64 {
		if max <= 0 {
			return 0
		}
		return v / max
	}
	return []float64{
		avgPrice,
		ratio(p.TotalWeight, maxWeight),
		ratio(float64(len(p.CategoryWeights)), maxCats),
		ratio(float64(len(p.BrandWeights)), maxBrands),
	}
}

// Cluster 返回用户所在簇；未分群用户返回 (0, false)。
func (s *Segments) Cluster(userID string) (int, bool) {
	if s == nil {
		return 0, false
	}
	c, ok := s.Assignment[userID]
	return c, ok
}

// Mates 返回同簇的其他成员（不含本人）。
func (s *Segments) Mates(userID string) []string {
	c, ok := s.Cluster(userID)
	if !ok {
		return nil
	}
	members := s.Members[c]
	out := make([]string, 0, len(members))
	for _, id := range members {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
