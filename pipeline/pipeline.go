package pipeline

import (
	"context"

	"github.com/rushteam/reco/core"
)

// Pipeline 是推荐服务链路的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 一次 Recommend 请求就是一条 Recall → Filter → ReRank 的 Node 链执行。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
