package matrix

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/reco/core"
)

// Builder 从交互日志全量构建矩阵。
//
// 每条交互的单元格增量 = kind 基础权重 × 数量/时长系数 × 时间衰减，
// 同一 (用户, 商品) 的多条交互加法累积。
type Builder struct {
	// Halflife 时间衰减半衰期，<=0 时取 core.DecayHalflife（30 天）
	Halflife time.Duration

	// Now 用于测试注入时钟，nil 时取 time.Now
	Now func() time.Time

	// Logger 记录被跳过的交互，默认静默
	Logger zerolog.Logger
}

// Build 构建矩阵。
//
// products 为当前目录的商品全集；引用了目录外商品的交互被跳过（记日志，不致命）。
// knownUsers 为当前用户表，nil 时接受日志中出现的所有用户。
func (b *Builder) Build(
	interactions []*core.Interaction,
	products map[string]*core.Product,
	knownUsers map[string]struct{},
) *Matrix {
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	halflife := b.Halflife
	if halflife <= 0 {
		halflife = core.DecayHalflife
	}

	m := New()
	skipped := 0
	for _, in := range interactions {
		if in == nil || in.UserID == "" || in.ProductID == "" {
			skipped++
			continue
		}
		if _, ok := products[in.ProductID]; !ok {
			b.Logger.Debug().
				Str("user_id", in.UserID).
				Str("product_id", in.ProductID).
				Msg("skip interaction: product not in catalog")
			skipped++
			continue
		}
		if knownUsers != nil {
			if _, ok := knownUsers[in.UserID]; !ok {
				b.Logger.Debug().
					Str("user_id", in.UserID).
					Msg("skip interaction: unknown user")
				skipped++
				continue
			}
		}
		m.Add(in.UserID, in.ProductID, in.DecayedWeight(now, halflife))
	}

	if skipped > 0 {
		b.Logger.Info().
			Int("skipped", skipped).
			Int("total", len(interactions)).
			Msg("matrix build skipped interactions")
	}
	return m
}
