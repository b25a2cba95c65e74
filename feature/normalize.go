package feature

import "math"

// Normalizer 是单值归一化接口。
type Normalizer interface {
	// NormalizeValue 把原始值映射到 [0,1]
	NormalizeValue(value float64) float64
}

// MinMaxNormalizer Min-Max 归一化
// 公式: x' = (x - min) / (max - min)
// 特点: 将值缩放到 [0, 1] 区间，越界裁剪
type MinMaxNormalizer struct {
	Min float64
	Max float64
}

func (n *MinMaxNormalizer) NormalizeValue(value float64) float64 {
	rangeVal := n.Max - n.Min
	if rangeVal <= 0 {
		return 0
	}
	out := (value - n.Min) / rangeVal
	if out < 0 {
		return 0
	}
	if out > 1 {
		return 1
	}
	return out
}

// LogNormalizer Log 变换归一化
// 公式: x' = log(1+x) / log(1+max)
// 特点: 处理长尾分布（浏览/购买计数），压缩大值
type LogNormalizer struct {
	Max float64
}

func (n *LogNormalizer) NormalizeValue(value float64) float64 {
	if value <= 0 || n.Max <= 0 {
		return 0
	}
	out := math.Log1p(value) / math.Log1p(n.Max)
	if out > 1 {
		return 1
	}
	return out
}
