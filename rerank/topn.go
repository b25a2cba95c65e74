package rerank

import (
	"context"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/pipeline"
)

// TopN 是 Top-N 截断节点，放在链路末端把结果收口到请求条数。
//
// 各召回源按 2× 过采样产出候选，多样性/业务重排在全量候选上进行，
// 最后由本节点截断，保证 len(result) <= N。
type TopN struct {
	// N 要保留的条数；N <= 0 时不截断
	N int
}

func (n *TopN) Name() string        { return "rerank.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
