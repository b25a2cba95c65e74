package core

import (
	"math"
	"time"
)

// InteractionKind 是用户-商品交互的类型。
type InteractionKind string

const (
	InteractionPurchase    InteractionKind = "purchase"
	InteractionView        InteractionKind = "view"
	InteractionSearchClick InteractionKind = "search_click"
)

// 各交互类型的基础权重：购买 > 浏览 > 搜索点击。
const (
	weightPurchase    = 3.0
	weightView        = 1.0
	weightSearchClick = 0.5
)

// DecayHalflife 是时间衰减的半衰期（30 天）。
const DecayHalflife = 30 * 24 * time.Hour

// Interaction 是一条用户-商品交互记录。
// 交互日志只追加不删除，引擎只做聚合；权重在矩阵构建时计算，不落盘。
type Interaction struct {
	UserID    string
	ProductID string
	Kind      InteractionKind
	Weight    float64       // 调用方自定义的原始权重，<=0 时取 1.0
	Quantity  int           // 购买件数（purchase 有效）
	Duration  time.Duration // 停留时长（view 有效）
	Timestamp time.Time
}

// BaseWeight 返回交互的未衰减权重：
// kind 基础权重 × 数量/时长系数 × 调用方权重。
//
// 浏览时长分档：>60s ×2.0，>30s ×1.5。
func (i *Interaction) BaseWeight() float64 {
	w := i.Weight
	if w <= 0 {
		w = 1.0
	}

	switch i.Kind {
	case InteractionPurchase:
		w *= weightPurchase
		if i.Quantity > 1 {
			w *= float64(i.Quantity)
		}
	case InteractionView:
		w *= weightView
		switch {
		case i.Duration > 60*time.Second:
			w *= 2.0
		case i.Duration > 30*time.Second:
			w *= 1.5
		}
	case InteractionSearchClick:
		w *= weightSearchClick
	default:
		// 未知类型按浏览处理
		w *= weightView
	}
	return w
}

// DecayedWeight 返回经指数时间衰减后的权重：base × exp(-Δt/halflife)。
// 未来时间戳（Δt < 0）不放大，按不衰减处理。
func (i *Interaction) DecayedWeight(now time.Time, halflife time.Duration) float64 {
	if halflife <= 0 {
		halflife = DecayHalflife
	}
	age := now.Sub(i.Timestamp)
	if age <= 0 {
		return i.BaseWeight()
	}
	return i.BaseWeight() * math.Exp(-float64(age)/float64(halflife))
}
