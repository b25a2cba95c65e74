package recall

import (
	"context"
	"math"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/matrix"
	"github.com/rushteam/reco/pkg/utils"
)

// Content 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："买家偏好某些类目/品牌/价位的商品，推荐特征相近的未购商品"
//
// 打分公式（权重固定，便于解释与回归测试）：
//
//	score = 0.4×类目匹配 + 0.3×品牌匹配 + 0.2×价格贴近 + 0.1×热度
//
// 其中类目/品牌匹配按画像权重归一化（最偏好的类目记 1.0），
// 价格贴近是相对平均客单价的线性衰减（超出画像价格区间记 0），
// 热度取 log 缩放值。
// 同时把买家偏好向量（交互加权平均的 TF-IDF 向量，按总权重归一避免
// 高频买家被量级放大）与候选向量的余弦相似度写入 Features，供
// explain 与规则节点使用。
//
// 低于 MinScore 的候选视为噪声，不作为推荐输出。
// 冷启动（画像缺失或交互总权重趋零）返回空结果，由上层降级到热门路径。
type Content struct {
	Features *feature.Store
	Matrix   *matrix.Matrix

	// Profile 查询买家画像
	Profile func(userID string) (*core.UserProfile, bool)

	// TopK 最终返回的商品数，<=0 时取 20
	TopK int

	// MinScore 分数下限，<=0 时取 0.05
	MinScore float64
}

func (r *Content) Name() string { return "recall.content" }

func (r *Content) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Features == nil || r.Matrix == nil || r.Profile == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	prof, ok := r.Profile(rctx.UserID)
	if !ok || prof.TotalWeight <= 1e-9 {
		return nil, nil
	}

	owned := r.Matrix.UserInteractions(rctx.UserID)
	prefVector := r.preferenceVector(owned, prof.TotalWeight)

	minScore := r.MinScore
	if minScore <= 0 {
		minScore = 0.05
	}
	maxCat := prof.TopCategoryWeight()
	maxBrand := prof.TopBrandWeight()

	list := make([]scored, 0)
	textSims := make(map[string]float64)
	for _, productID := range r.Features.SortedIDs() {
		if _, seen := owned[productID]; seen {
			continue
		}
		f, ok := r.Features.Get(productID)
		if !ok {
			continue
		}

		var catScore, brandScore float64
		if maxCat > 0 {
			catScore = prof.CategoryWeights[f.Category] / maxCat
		}
		if maxBrand > 0 {
			brandScore = prof.BrandWeights[f.Brand] / maxBrand
		}

		score := 0.4*catScore + 0.3*brandScore +
			0.2*priceProximity(prof, productID, r.Features) +
			0.1*f.PopularityNorm
		if score < minScore {
			continue
		}

		textSims[productID] = feature.CosineSimilarity(prefVector, f.Vector)
		list = append(list, scored{id: productID, score: score})
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	items := toItems(list, topK, "content", "")
	for _, it := range items {
		it.Features["text_similarity"] = textSims[it.ID]
		it.PutLabel("reason", utils.NewLabel(r.reason(it.ID, prof, maxCat, maxBrand), "recall"))
	}
	return items, nil
}

// preferenceVector 用交互权重加权平均买家交互过商品的 TF-IDF 向量。
// 除以总权重，避免交互量大的买家向量被量级放大。
func (r *Content) preferenceVector(owned map[string]float64, totalWeight float64) []float64 {
	var pref []float64
	for productID, w := range owned {
		f, ok := r.Features.Get(productID)
		if !ok {
			continue
		}
		if pref == nil {
			pref = make([]float64, len(f.Vector))
		}
		for i, v := range f.Vector {
			pref[i] += v * w
		}
	}
	if pref != nil && totalWeight > 0 {
		for i := range pref {
			pref[i] /= totalWeight
		}
	}
	return pref
}

func (r *Content) reason(productID string, prof *core.UserProfile, maxCat, maxBrand float64) string {
	f, ok := r.Features.Get(productID)
	if !ok {
		return "feature_match"
	}
	if maxBrand > 0 && prof.BrandWeights[f.Brand] >= maxBrand {
		return "brand_match"
	}
	if maxCat > 0 && prof.CategoryWeights[f.Category] > 0 {
		return "category_match"
	}
	return "feature_match"
}

// priceProximity 相对平均客单价的线性衰减：价格与均价一致记 1，
// 偏离一个均价及以上记 0。落在画像可接受价格区间外直接记 0，
// 无均价时中性返回 0.5。
func priceProximity(prof *core.UserProfile, productID string, feats *feature.Store) float64 {
	p, ok := feats.Product(productID)
	if !ok || prof.AvgPrice <= 0 {
		return 0.5
	}
	if !prof.InPriceRange(p.Price()) {
		return 0
	}
	out := 1 - math.Abs(p.Price()-prof.AvgPrice)/prof.AvgPrice
	if out < 0 {
		return 0
	}
	return out
}
