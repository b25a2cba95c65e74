package config

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/reco/cluster"
	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/filter"
	"github.com/rushteam/reco/matrix"
	"github.com/rushteam/reco/pipeline"
	"github.com/rushteam/reco/pkg/conv"
	"github.com/rushteam/reco/recall"
	"github.com/rushteam/reco/rerank"
)

// Provider 向 Node 工厂提供当前代次的数据视图。
// 引擎重训是整代原子切换，因此工厂在构建 Node 时按需取值，
// 而不是持有旧代次的引用。
type Provider interface {
	Matrix() *matrix.Matrix
	Features() *feature.Store
	Profile(userID string) (*core.UserProfile, bool)
	Segments() *cluster.Segments
	TrendingStore() (core.KeyValueStore, string)
}

// NewFactory 构建注册了全部内置 Node 的工厂，
// 供 YAML 声明的自定义 Pipeline 使用。
//
// 各 Node 的 config 字段（均可缺省）：
//
//	recall.collaborative: top_k, top_k_neighbors, similarity_floor
//	recall.content:       top_k, min_score
//	recall.segment:       top_k
//	recall.trending:      top_k
//	recall.hybrid:        top_k, timeout_ms, weights（{collaborative: 0.4, ...} 映射）
//	                      或平铺键 w_collaborative, w_content, w_trending, w_segment
//	filter.seen:          （无）
//	rerank.diversity:     limit, max_per_category, max_per_brand, business_type_boost
//	rerank.business:      relevance_weight, margin_weight, stock_weight, low_stock_threshold
//	rerank.rule:          rules（[{expr, factor}] 列表）
//	rerank.topn:          n
func NewFactory(p Provider, logger zerolog.Logger) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()

	f.Register("recall.collaborative", func(c map[string]any) (pipeline.Node, error) {
		return &recall.SingleSource{Source: collaborative(p, c)}, nil
	})
	f.Register("recall.content", func(c map[string]any) (pipeline.Node, error) {
		return &recall.SingleSource{Source: content(p, c)}, nil
	})
	f.Register("recall.segment", func(c map[string]any) (pipeline.Node, error) {
		return &recall.SingleSource{Source: segment(p, c)}, nil
	})
	f.Register("recall.trending", func(c map[string]any) (pipeline.Node, error) {
		return &recall.SingleSource{Source: trending(p, c)}, nil
	})

	f.Register("recall.hybrid", func(c map[string]any) (pipeline.Node, error) {
		def := Default().Hybrid
		w := hybridWeights(c)
		return &recall.Fanout{
			Sources: []recall.WeightedSource{
				{Source: collaborative(p, c), Weight: w("collaborative", def.Collaborative)},
				{Source: content(p, c), Weight: w("content", def.Content)},
				{Source: trending(p, c), Weight: w("trending", def.Trending)},
				{Source: segment(p, c), Weight: w("segment", def.Segment)},
			},
			Timeout: time.Duration(conv.ConfigGetInt(c, "timeout_ms", 500)) * time.Millisecond,
			Logger:  logger,
		}, nil
	})

	f.Register("filter.seen", func(_ map[string]any) (pipeline.Node, error) {
		return &filter.SeenFilter{Matrix: p.Matrix()}, nil
	})

	f.Register("rerank.diversity", func(c map[string]any) (pipeline.Node, error) {
		return &rerank.Diversity{
			Features:          p.Features(),
			Limit:             conv.ConfigGetInt(c, "limit", 0),
			MaxPerCategory:    conv.ConfigGetInt(c, "max_per_category", 2),
			MaxPerBrand:       conv.ConfigGetInt(c, "max_per_brand", 2),
			BusinessTypeBoost: conv.ConfigGetFloat(c, "business_type_boost", 0),
		}, nil
	})

	f.Register("rerank.business", func(c map[string]any) (pipeline.Node, error) {
		return &rerank.Business{
			Features:          p.Features(),
			RelevanceWeight:   conv.ConfigGetFloat(c, "relevance_weight", 0.5),
			MarginWeight:      conv.ConfigGetFloat(c, "margin_weight", 0.3),
			StockWeight:       conv.ConfigGetFloat(c, "stock_weight", 0.2),
			LowStockThreshold: conv.ConfigGetInt(c, "low_stock_threshold", 50),
		}, nil
	})

	f.Register("rerank.rule", func(c map[string]any) (pipeline.Node, error) {
		return &rerank.RuleBoost{Rules: parseRules(c), Logger: logger}, nil
	})

	f.Register("rerank.topn", func(c map[string]any) (pipeline.Node, error) {
		return &rerank.TopN{N: conv.ConfigGetInt(c, "n", 10)}, nil
	})

	return f
}

func collaborative(p Provider, c map[string]any) *recall.Collaborative {
	return &recall.Collaborative{
		Matrix:          p.Matrix(),
		TopKNeighbors:   conv.ConfigGetInt(c, "top_k_neighbors", 50),
		SimilarityFloor: conv.ConfigGetFloat(c, "similarity_floor", 0.1),
		TopK:            conv.ConfigGetInt(c, "top_k", 20),
	}
}

func content(p Provider, c map[string]any) *recall.Content {
	return &recall.Content{
		Features: p.Features(),
		Matrix:   p.Matrix(),
		Profile:  p.Profile,
		TopK:     conv.ConfigGetInt(c, "top_k", 20),
		MinScore: conv.ConfigGetFloat(c, "min_score", 0.05),
	}
}

func segment(p Provider, c map[string]any) *recall.Segment {
	return &recall.Segment{
		Segments: p.Segments(),
		Matrix:   p.Matrix(),
		TopK:     conv.ConfigGetInt(c, "top_k", 20),
	}
}

func trending(p Provider, c map[string]any) *recall.Trending {
	kv, key := p.TrendingStore()
	return &recall.Trending{
		Features: p.Features(),
		Store:    kv,
		Key:      key,
		TopK:     conv.ConfigGetInt(c, "top_k", 20),
	}
}

// hybridWeights 解析混合召回的分源权重。
// 优先读 weights 映射（YAML 解析为 map[string]any，数值统一转 float64），
// 未配置的源退回平铺键 w_<source>，再退回内置缺省。
func hybridWeights(c map[string]any) func(name string, def float64) float64 {
	weights := conv.MapToFloat64(conv.ConfigGet[map[string]any](c, "weights", nil))
	return func(name string, def float64) float64 {
		if v, ok := weights[name]; ok {
			return v
		}
		return conv.ConfigGetFloat(c, "w_"+name, def)
	}
}

// parseRules 从 config 的 rules 字段解析 CEL 加权规则列表。
// YAML 解析出来是 []any / map[string]any，逐条兼容转换。
func parseRules(c map[string]any) []rerank.BoostRule {
	raw := conv.ConfigGet[[]any](c, "rules", nil)
	rules := make([]rerank.BoostRule, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		expr := conv.ConfigGet[string](m, "expr", "")
		if expr == "" {
			continue
		}
		rules = append(rules, rerank.BoostRule{
			Expr:   expr,
			Factor: conv.ConfigGetFloat(m, "factor", 1),
		})
	}
	return rules
}
