package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/pipeline"
	"github.com/rushteam/reco/pkg/utils"
)

// Diversity 是多样性重排 Node：限制结果头部的类目/品牌重复度。
//
// 规则：
//   - 结果前半段（请求条数的一半）内，同一类目或同一品牌最多出现
//     MaxPerCategory / MaxPerBrand 次（默认各 2 次）
//   - 后半段放开限制，被前半段跳过的候选按原序回填，保证列表填满
//   - 候选池太小或同质时约束自然失效（回填行为），这是刻意的取舍
//
// BusinessTypeBoost > 1 时，对业态与买家一致的商品先做分数加权再排序。
// 这是准确性与多样性之间的一个业务取舍，不是硬性不变量。
type Diversity struct {
	Features *feature.Store

	// Limit 请求的最终条数，用于界定"前半段"；<=0 时不启用半程约束
	Limit int

	// MaxPerCategory / MaxPerBrand 前半段内的重复上限，<=0 时取 2
	MaxPerCategory int
	MaxPerBrand    int

	// BusinessTypeBoost 业态匹配加权系数（典型 1.2），<=1 时关闭
	BusinessTypeBoost float64
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.Features == nil {
		return items, nil
	}

	// 业态加权在排序前生效
	if n.BusinessTypeBoost > 1 && rctx != nil && rctx.BusinessType() != "" {
		for _, it := range items {
			f, ok := n.Features.Get(it.ID)
			if !ok || f.BusinessType == "" {
				continue
			}
			if f.BusinessType == rctx.BusinessType() {
				it.Score *= n.BusinessTypeBoost
				it.PutLabel("boost", utils.NewLabel("business_type", "rerank"))
			}
		}
	}

	sortItems(items)

	if n.Limit <= 0 {
		return items, nil
	}

	maxPerCategory := n.MaxPerCategory
	if maxPerCategory <= 0 {
		maxPerCategory = 2
	}
	maxPerBrand := n.MaxPerBrand
	if maxPerBrand <= 0 {
		maxPerBrand = 2
	}
	strictHead := (n.Limit + 1) / 2

	categoryCount := make(map[string]int)
	brandCount := make(map[string]int)
	accepted := make([]*core.Item, 0, len(items))
	deferred := make([]*core.Item, 0)

	for _, it := range items {
		if it == nil {
			continue
		}
		if len(accepted) >= strictHead {
			accepted = append(accepted, it)
			continue
		}

		category, brand := "", ""
		if f, ok := n.Features.Get(it.ID); ok {
			category, brand = f.Category, f.Brand
		}
		if (category != "" && categoryCount[category] >= maxPerCategory) ||
			(brand != "" && brandCount[brand] >= maxPerBrand) {
			deferred = append(deferred, it)
			continue
		}
		if category != "" {
			categoryCount[category]++
		}
		if brand != "" {
			brandCount[brand]++
		}
		accepted = append(accepted, it)
	}

	// 被跳过的候选回填到尾部，保持原有相对顺序
	return append(accepted, deferred...), nil
}

// sortItems 分数降序，同分按商品 ID 升序，保证输出确定性。
func sortItems(items []*core.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}
