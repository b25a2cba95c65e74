// Package profile 从交互矩阵与商品特征派生买家画像。
package profile

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/matrix"
)

// Builder 在全量重建时为每个矩阵行构建画像。
//
// 遍历用户行的非零单元格，查商品特征，按交互权重累加
// 类目/品牌权重与价格统计。派生分（多样性/忠诚度）只在这里计算，
// 在线更新路径不重算（允许陈旧，下次重建刷新）。
type Builder struct {
	Logger zerolog.Logger
}

// Build 为矩阵中的所有用户构建画像。
// users 提供买家元数据（业态），缺失时画像仍会建立，业态留空。
func (b *Builder) Build(
	m *matrix.Matrix,
	feats *feature.Store,
	users map[string]*core.UserMeta,
) *Set {
	set := NewSet()
	for _, userID := range m.Users() {
		p := b.buildOne(userID, m, feats)
		if meta, ok := users[userID]; ok && meta != nil {
			p.BusinessType = meta.BusinessType
		}
		set.put(p)
	}
	return set
}

func (b *Builder) buildOne(userID string, m *matrix.Matrix, feats *feature.Store) *core.UserProfile {
	p := core.NewUserProfile(userID)

	interactions := m.UserInteractions(userID)
	prices := make([]float64, 0, len(interactions))
	var priceWeightSum, weightSum float64

	for productID, w := range interactions {
		prod, ok := feats.Product(productID)
		if !ok {
			// 矩阵与目录在同一代内构建，正常不会出现；防御性跳过
			continue
		}
		if prod.Category != "" {
			p.CategoryWeights[prod.Category] += w
		}
		if prod.Brand != "" {
			p.BrandWeights[prod.Brand] += w
		}
		price := prod.Price()
		prices = append(prices, price)
		priceWeightSum += price * w
		weightSum += w
	}

	p.TotalWeight = weightSum
	if weightSum > 0 {
		p.AvgPrice = priceWeightSum / weightSum
	}
	p.PriceMin, p.PriceMax = priceRange(prices)

	// 多样性 = 触达类目数 / 目录类目总数
	if feats.CategoryCount() > 0 {
		p.DiversityScore = float64(len(p.CategoryWeights)) / float64(feats.CategoryCount())
	}

	// 忠诚度 = 最大单品牌权重 / 品牌总权重
	var brandSum, brandMax float64
	for _, w := range p.BrandWeights {
		brandSum += w
		if w > brandMax {
			brandMax = w
		}
	}
	if brandSum > 0 {
		p.LoyaltyScore = brandMax / brandSum
	}

	return p
}

// priceRange 按四分位展开计算可接受价格区间：
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR]，下界不小于 0。
// 样本不足 4 个时退化为 [min/2, max*2] 的宽区间；无样本时无区间。
func priceRange(prices []float64) (float64, float64) {
	if len(prices) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	if len(sorted) < 4 {
		return sorted[0] / 2, sorted[len(sorted)-1] * 2
	}

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	if lo < 0 {
		lo = 0
	}
	return lo, q3 + 1.5*iqr
}

// quantile 对已排序样本做线性插值分位数。
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
