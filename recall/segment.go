package recall

import (
	"context"

	"github.com/rushteam/reco/cluster"
	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/matrix"
)

// Segment 是基于买家分群的召回源。
//
// 核心思想："同一行为分群（业态/客单价/进货广度相近）的买家，
// 采购结构相似"。对目标买家所在簇，聚合簇友在其未交互商品上的
// 交互权重，并按簇规模归一。
//
// 分群在全量重建时由 K-means 产出；活跃用户不足时 Segments 为 nil，
// 本源返回空结果（INSUFFICIENT_DATA 语义），由上层降级到热门路径。
type Segment struct {
	Segments *cluster.Segments
	Matrix   *matrix.Matrix

	// TopK 最终返回的商品数，<=0 时取 20
	TopK int
}

func (r *Segment) Name() string { return "recall.segment" }

func (r *Segment) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Segments == nil || r.Matrix == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	mates := r.Segments.Mates(rctx.UserID)
	if len(mates) == 0 {
		return nil, nil
	}
	owned := r.Matrix.UserInteractions(rctx.UserID)

	itemScores := make(map[string]float64)
	for _, mate := range mates {
		for productID, w := range r.Matrix.UserInteractions(mate) {
			if _, seen := owned[productID]; seen {
				continue
			}
			itemScores[productID] += w
		}
	}

	// 按簇规模归一，避免大簇天然高分
	clusterSize := float64(len(mates) + 1)
	list := make([]scored, 0, len(itemScores))
	for id, score := range itemScores {
		list = append(list, scored{id: id, score: score / clusterSize})
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	return toItems(list, topK, "segment", "popular_in_segment"), nil
}
