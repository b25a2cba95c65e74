package recall

import (
	"context"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/pkg/utils"
)

// Trending 是热门召回源，也是所有降级链的兜底：
// 不依赖任何个性化信号，只要目录非空就有输出。
//
// 数据来源优先级：
//   - Store 中的有序集合（ZRange，分数即热度）：Retrain 后由引擎发布，
//     多进程部署时各实例读到同一份热门榜
//   - 目录快照计算：log 缩放热度降序（并列按商品 ID 升序，完全确定）
type Trending struct {
	Features *feature.Store

	// Store 可选的热门榜缓存后端
	Store core.KeyValueStore
	// Key 热门榜在 Store 中的 key，例如 "reco:trending"
	Key string

	// TopK 最终返回的商品数，<=0 时取 20
	TopK int
}

func (r *Trending) Name() string { return "recall.trending" }

func (r *Trending) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}

	// 优先读缓存的热门榜。超量拉取：缓存可能落后于目录，
	// 剔除已下架商品后仍要凑满 topK 条
	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(2*topK)-1)
		if err == nil && len(members) > 0 {
			out := make([]*core.Item, 0, topK)
			for rank, id := range members {
				if r.Features != nil {
					if _, ok := r.Features.Get(id); !ok {
						continue
					}
				}
				it := core.NewItem(id)
				// 名次折算分数，保持与计算路径同样的降序语义
				it.Score = 1 - float64(rank)/float64(len(members))
				it.PutLabel("recall_source", utils.NewLabel("trending", "recall"))
				it.PutLabel("reason", utils.NewLabel("bestseller", "recall"))
				out = append(out, it)
				if len(out) == topK {
					break
				}
			}
			if len(out) > 0 {
				return out, nil
			}
		}
	}

	if r.Features == nil {
		return nil, nil
	}
	list := make([]scored, 0, r.Features.Len())
	for _, id := range r.Features.SortedIDs() {
		f, _ := r.Features.Get(id)
		list = append(list, scored{id: id, score: f.PopularityNorm})
	}
	return toItems(list, topK, "trending", "bestseller"), nil
}
