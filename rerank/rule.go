package rerank

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/pipeline"
	"github.com/rushteam/reco/pkg/dsl"
	"github.com/rushteam/reco/pkg/utils"
)

// BoostRule 是一条 CEL 加权规则：命中表达式的候选乘以 Factor。
type BoostRule struct {
	// Expr CEL 表达式，可访问 item / label / rctx
	// 例如 `label.business_type == rctx.business_type`
	Expr string `yaml:"expr"`

	// Factor 分数乘数（>1 提权，<1 降权）
	Factor float64 `yaml:"factor"`
}

// RuleBoost 是规则驱动的重排 Node：让运营/实验侧无需改代码就能
// 调整业态加权、来源加权等策略。规则表达式编译失败或求值出错时
// 跳过该规则（记日志），不影响链路。
type RuleBoost struct {
	Rules  []BoostRule
	Logger zerolog.Logger
}

func (n *RuleBoost) Name() string        { return "rerank.rule" }
func (n *RuleBoost) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *RuleBoost) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Rules) == 0 || len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		eval := dsl.NewEval(it, rctx)
		for _, rule := range n.Rules {
			if rule.Factor <= 0 || rule.Factor == 1 {
				continue
			}
			hit, err := eval.Evaluate(rule.Expr)
			if err != nil {
				n.Logger.Debug().Str("expr", rule.Expr).Err(err).Msg("boost rule skipped")
				continue
			}
			if hit {
				it.Score *= rule.Factor
				it.PutLabel("boost", utils.NewLabel("rule", "rerank"))
			}
		}
	}

	sortItems(items)
	return items, nil
}
