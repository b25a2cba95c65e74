// Package filter 提供候选过滤 Node。
package filter

import (
	"context"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/matrix"
	"github.com/rushteam/reco/pipeline"
)

// SeenFilter 过滤目标买家已经交互过的商品。
//
// 不变量：matrix[u][p] > 0 的商品 p 绝不出现在 u 的个性化推荐中。
// 各召回源自身已跳过已交互商品，这里在链路末端再收口一次，
// 覆盖热门源等不做个性化排除的路径。
type SeenFilter struct {
	Matrix *matrix.Matrix
}

func (f *SeenFilter) Name() string        { return "filter.seen" }
func (f *SeenFilter) Kind() pipeline.Kind { return pipeline.KindFilter }

func (f *SeenFilter) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if f.Matrix == nil || rctx == nil || rctx.UserID == "" || len(items) == 0 {
		return items, nil
	}
	owned := f.Matrix.UserInteractions(rctx.UserID)
	if len(owned) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, seen := owned[it.ID]; seen {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}
