// Package config 提供引擎的类型化配置与自定义 Pipeline 的 Node 工厂。
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/reco/rerank"
)

// Config 是推荐引擎的运行配置。
// 零值字段在 Load/Default 中回填默认值。一次进程生命周期内保持稳定，
// 特别是混合权重：同一会话内的权重漂移会破坏结果可复现性。
type Config struct {
	// HalflifeDays 交互权重时间衰减半衰期（天）
	HalflifeDays int `yaml:"halflife_days"`

	// VectorDim TF-IDF 向量维度
	VectorDim int `yaml:"vector_dim"`

	// SourceTimeoutMS 混合召回中单个源的超时（毫秒）
	SourceTimeoutMS int `yaml:"source_timeout_ms"`

	// Hybrid 四路召回的融合权重，和应为 1.0
	Hybrid HybridWeights `yaml:"hybrid"`

	Collaborative CollaborativeConfig `yaml:"collaborative"`
	Content       ContentConfig       `yaml:"content"`
	Diversity     DiversityConfig     `yaml:"diversity"`
	Business      BusinessConfig      `yaml:"business"`

	// BoostRules CEL 加权规则，空时不挂载规则节点
	BoostRules []rerank.BoostRule `yaml:"boost_rules"`

	// TrendingKey 热门榜在 KeyValueStore 中的 key，空时不读写缓存
	TrendingKey string `yaml:"trending_key"`

	// RetrainCron 定时重训的 cron 表达式，如 "0 3 * * *"；空时不起调度
	RetrainCron string `yaml:"retrain_cron"`
}

// HybridWeights 是混合召回的固定融合权重。
type HybridWeights struct {
	Collaborative float64 `yaml:"collaborative"`
	Content       float64 `yaml:"content"`
	Trending      float64 `yaml:"trending"`
	Segment       float64 `yaml:"segment"`
}

type CollaborativeConfig struct {
	TopKNeighbors   int     `yaml:"top_k_neighbors"`
	SimilarityFloor float64 `yaml:"similarity_floor"`
}

type ContentConfig struct {
	MinScore float64 `yaml:"min_score"`
}

type DiversityConfig struct {
	MaxPerCategory    int     `yaml:"max_per_category"`
	MaxPerBrand       int     `yaml:"max_per_brand"`
	BusinessTypeBoost float64 `yaml:"business_type_boost"`
}

type BusinessConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RelevanceWeight   float64 `yaml:"relevance_weight"`
	MarginWeight      float64 `yaml:"margin_weight"`
	StockWeight       float64 `yaml:"stock_weight"`
	LowStockThreshold int     `yaml:"low_stock_threshold"`
}

// Default 返回默认配置。
// 混合权重取 0.4/0.3/0.2/0.1（协同/内容/热门/分群），和为 1.0。
func Default() *Config {
	return &Config{
		HalflifeDays:    30,
		VectorDim:       100,
		SourceTimeoutMS: 500,
		Hybrid: HybridWeights{
			Collaborative: 0.4,
			Content:       0.3,
			Trending:      0.2,
			Segment:       0.1,
		},
		Collaborative: CollaborativeConfig{
			TopKNeighbors:   50,
			SimilarityFloor: 0.1,
		},
		Content: ContentConfig{
			MinScore: 0.05,
		},
		Diversity: DiversityConfig{
			MaxPerCategory:    2,
			MaxPerBrand:       2,
			BusinessTypeBoost: 1.2,
		},
		Business: BusinessConfig{
			Enabled:           false,
			RelevanceWeight:   0.5,
			MarginWeight:      0.3,
			StockWeight:       0.2,
			LowStockThreshold: 50,
		},
	}
}

// Load 从 YAML 文件加载配置，未出现的字段回填默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.HalflifeDays <= 0 {
		c.HalflifeDays = def.HalflifeDays
	}
	if c.VectorDim <= 0 {
		c.VectorDim = def.VectorDim
	}
	if c.SourceTimeoutMS <= 0 {
		c.SourceTimeoutMS = def.SourceTimeoutMS
	}
	zero := HybridWeights{}
	if c.Hybrid == zero {
		c.Hybrid = def.Hybrid
	}
	if c.Collaborative.TopKNeighbors <= 0 {
		c.Collaborative.TopKNeighbors = def.Collaborative.TopKNeighbors
	}
	if c.Collaborative.SimilarityFloor <= 0 {
		c.Collaborative.SimilarityFloor = def.Collaborative.SimilarityFloor
	}
	if c.Content.MinScore <= 0 {
		c.Content.MinScore = def.Content.MinScore
	}
	if c.Diversity.MaxPerCategory <= 0 {
		c.Diversity.MaxPerCategory = def.Diversity.MaxPerCategory
	}
	if c.Diversity.MaxPerBrand <= 0 {
		c.Diversity.MaxPerBrand = def.Diversity.MaxPerBrand
	}
}

// Validate 校验配置一致性：混合权重之和必须为 1.0（容差 1e-6）。
func (c *Config) Validate() error {
	sum := c.Hybrid.Collaborative + c.Hybrid.Content + c.Hybrid.Trending + c.Hybrid.Segment
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return fmt.Errorf("hybrid weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// Halflife 返回时间衰减半衰期。
func (c *Config) Halflife() time.Duration {
	return time.Duration(c.HalflifeDays) * 24 * time.Hour
}

// SourceTimeout 返回单召回源超时。
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutMS) * time.Millisecond
}
