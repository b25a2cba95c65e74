package rerank

import (
	"context"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/pipeline"
	"github.com/rushteam/reco/pkg/utils"
)

// Business 是 B2B 业务目标重排 Node：在相关性分之上叠加利润率与库存约束。
//
// 打分公式：
//
//	final = RelevanceWeight×score + MarginWeight×归一利润率 − StockWeight×低库存惩罚
//
// 利润率按经验区间 [0.1, 0.4] 做 Min-Max 归一；库存低于 LowStockThreshold
// 记 1.0 的惩罚（推低库存商品给买家是双输）。默认关闭，经配置启用：
// 这是排序后的业务策略，不进入各召回算法本身。
type Business struct {
	Features *feature.Store

	// RelevanceWeight / MarginWeight / StockWeight 三路权重，
	// 全为 0 时按 0.5 / 0.3 / 0.2 取默认
	RelevanceWeight float64
	MarginWeight    float64
	StockWeight     float64

	// LowStockThreshold 低库存惩罚阈值（件数），<=0 时取 50
	LowStockThreshold int
}

func (n *Business) Name() string        { return "rerank.business" }
func (n *Business) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Business) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.Features == nil {
		return items, nil
	}

	relevanceW, marginW, stockW := n.RelevanceWeight, n.MarginWeight, n.StockWeight
	if relevanceW == 0 && marginW == 0 && stockW == 0 {
		relevanceW, marginW, stockW = 0.5, 0.3, 0.2
	}
	lowStock := n.LowStockThreshold
	if lowStock <= 0 {
		lowStock = 50
	}
	marginNorm := &feature.MinMaxNormalizer{Min: 0.1, Max: 0.4}

	for _, it := range items {
		p, ok := n.Features.Product(it.ID)
		if !ok {
			continue
		}
		var penalty float64
		if p.CurrentStock < lowStock {
			penalty = 1.0
		}
		it.Score = relevanceW*it.Score + marginW*marginNorm.NormalizeValue(p.ProfitMargin) - stockW*penalty
		if penalty > 0 {
			it.PutLabel("low_stock", utils.NewLabel("1", "rerank"))
		}
	}

	sortItems(items)
	return items, nil
}
