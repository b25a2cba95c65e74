package recall

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/pipeline"
	"github.com/rushteam/reco/pkg/utils"
)

// WeightedSource 是参与混合的召回源及其融合权重。
type WeightedSource struct {
	Source Source
	Weight float64
}

// Fanout 是混合召回 Node：并发执行各召回源，按固定权重融合分数。
//
// 融合规则：
//   - 各源独立执行（只读共享结构，无共享可变状态），单源超时/出错
//     记日志并跳过，不中断其他源
//   - 单源内部分数先按该源最大值归一到 [0,1]，再乘融合权重累加，
//     避免不同算法的量纲互相压制
//   - 每个源应配置为 2× 最终条数的过采样，给多样性重排留余量
//
// 结果分数降序（并列按商品 ID 升序），不在此截断，由 rerank.TopN 收口。
type Fanout struct {
	Sources []WeightedSource

	// Timeout 单个召回源的超时时间，<=0 时不限制
	Timeout time.Duration

	Logger zerolog.Logger
}

func (n *Fanout) Name() string        { return "recall.hybrid" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		results = make([][]*core.Item, len(n.Sources))
		eg, _   = errgroup.WithContext(ctx)
	)

	for i, ws := range n.Sources {
		i, ws := i, ws
		eg.Go(func() error {
			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			items, err := ws.Source.Recall(recallCtx, rctx)
			if err != nil {
				// 单源失败降级为空结果，不中断其他召回源
				n.Logger.Info().
					Str("source", ws.Source.Name()).
					Err(err).
					Msg("recall source degraded")
				return nil
			}

			mu.Lock()
			results[i] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 加权融合：score[p] = Σ weight_i × (score_i[p] / max_i)
	merged := make(map[string]*core.Item)
	combined := make(map[string]float64)
	for i, ws := range n.Sources {
		items := results[i]
		if len(items) == 0 {
			continue
		}
		var max float64
		for _, it := range items {
			if it.Score > max {
				max = it.Score
			}
		}
		if max <= 0 {
			max = 1
		}
		for _, it := range items {
			combined[it.ID] += ws.Weight * (it.Score / max)
			if old, ok := merged[it.ID]; ok {
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				for k, v := range it.Features {
					old.Features[k] = v
				}
				continue
			}
			merged[it.ID] = it
		}
	}

	list := make([]scored, 0, len(combined))
	for id, score := range combined {
		list = append(list, scored{id: id, score: score})
	}
	sortScored(list)

	out := make([]*core.Item, 0, len(list))
	for _, s := range list {
		it := merged[s.id]
		it.Score = s.score
		it.PutLabel("combiner", utils.NewLabel("hybrid", "recall"))
		out = append(out, it)
	}
	return out, nil
}

// SingleSource 把一个召回源包装成 Recall Node，用于单算法链路
// （recommend type = collaborative/content/segment/trending）。
type SingleSource struct {
	Source Source
}

func (n *SingleSource) Name() string        { return n.Source.Name() }
func (n *SingleSource) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *SingleSource) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Source.Recall(ctx, rctx)
}
