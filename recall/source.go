package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/pkg/utils"
)

// Source 表示一个可复用的召回源（协同过滤/内容/分群/热门）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
//
// 约定：冷启动、数据不足等算法级降级以空结果表达（nil, nil），
// 由上层（Fanout 或 engine 的降级链）决定回退；error 只用于结构性失败。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// scored 是召回内部的打分中间态。
type scored struct {
	id    string
	score float64
}

// sortScored 分数降序排序，同分按商品 ID 升序，保证输出确定性。
func sortScored(list []scored) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].id < list[j].id
	})
}

// toItems 把打分结果转为带来源标签的 Item 列表，截断到 topK。
func toItems(list []scored, topK int, source, reason string) []*core.Item {
	sortScored(list)
	if topK > 0 && len(list) > topK {
		list = list[:topK]
	}
	out := make([]*core.Item, 0, len(list))
	for _, s := range list {
		it := core.NewItem(s.id)
		it.Score = s.score
		it.PutLabel("recall_source", utils.NewLabel(source, "recall"))
		if reason != "" {
			it.PutLabel("reason", utils.NewLabel(reason, "recall"))
		}
		out = append(out, it)
	}
	return out
}

// cosineSimilarity 计算两个等长稠密向量的余弦相似度。
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
