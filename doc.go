// Package reco 是一个面向 B2B 商城的混合推荐引擎（Recommendation Core）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → ReRank）
// - Generation-first: 矩阵/画像/特征/分群以"代"为单位整体构建、原子切换
// - Labels-first: labels 全链路透传，支持 explain / 观测 / 策略驱动
//
// 四路召回（协同过滤 / 内容 / 分群 / 热门）经加权融合与多样性重排后输出，
// 在线更新路径只做单元素增量，完整重建由 engine.Retrain 负责。
package reco

import "github.com/rushteam/reco/pipeline"

// 轻量 facade：便于用户直接 import "reco" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
