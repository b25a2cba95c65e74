package core

import "time"

// UserProfile 是买家画像的核心抽象。
//
// 一句话定义：买家画像 = 推荐 Pipeline 的"全局上下文 + 特征源 + 决策信号"
//
// 它不是某一个 Node，而是：
//   - 被所有 Node 共享
//   - 驱动 Recall / ReRank
//   - 可以被在线更新路径增量修补
//
// 设计要点：
//
//	维度              作用
//	静态属性          冷启动 / 业态匹配
//	类目/品牌权重     Content Recall 核心
//	价格区间          价格贴近度打分
//	多样性/忠诚度     分群特征与观测
//	可更新            Online Learning（增量修补，派生分允许陈旧）
type UserProfile struct {
	UserID string

	// 静态属性（冷启动 / 业态匹配）
	BusinessType string // supermarket / convenience / kiosk ...

	// 偏好权重（按交互权重累加），key: 类目/品牌，value: 累计权重
	CategoryWeights map[string]float64
	BrandWeights    map[string]float64

	// 价格统计（按交互权重加权）
	AvgPrice float64
	PriceMin float64 // 四分位展开下界 Q1 - 1.5*IQR（有购买史时）
	PriceMax float64 // 四分位展开上界 Q3 + 1.5*IQR

	// 派生分：仅在全量重建时刷新，在线路径允许陈旧
	DiversityScore float64 // 触达类目数 / 目录类目总数
	LoyaltyScore   float64 // 最大单品牌权重 / 品牌总权重，无品牌交互时为 0

	// 交互总权重，用于冷启动判断与归一化
	TotalWeight float64

	UpdateTime time.Time
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:          userID,
		CategoryWeights: make(map[string]float64),
		BrandWeights:    make(map[string]float64),
		UpdateTime:      time.Now(),
	}
}

// AddWeight 按一次交互增量修补类目/品牌权重与总权重。
// 派生分（DiversityScore/LoyaltyScore）不在此处重算。
func (p *UserProfile) AddWeight(category, brand string, w float64) {
	if p.CategoryWeights == nil {
		p.CategoryWeights = make(map[string]float64)
	}
	if p.BrandWeights == nil {
		p.BrandWeights = make(map[string]float64)
	}
	if category != "" {
		p.CategoryWeights[category] += w
	}
	if brand != "" {
		p.BrandWeights[brand] += w
	}
	p.TotalWeight += w
	p.UpdateTime = time.Now()
}

// Clone 返回画像的深拷贝（权重 map 独立）。
// 在线更新采用写时复制：修补发生在副本上，读者持有的快照不被改动。
func (p *UserProfile) Clone() *UserProfile {
	cp := *p
	cp.CategoryWeights = make(map[string]float64, len(p.CategoryWeights))
	for k, v := range p.CategoryWeights {
		cp.CategoryWeights[k] = v
	}
	cp.BrandWeights = make(map[string]float64, len(p.BrandWeights))
	for k, v := range p.BrandWeights {
		cp.BrandWeights[k] = v
	}
	return &cp
}

// TopCategoryWeight 返回最大类目权重，用于归一化。
func (p *UserProfile) TopCategoryWeight() float64 {
	var max float64
	for _, w := range p.CategoryWeights {
		if w > max {
			max = w
		}
	}
	return max
}

// TopBrandWeight 返回最大品牌权重，用于归一化。
func (p *UserProfile) TopBrandWeight() float64 {
	var max float64
	for _, w := range p.BrandWeights {
		if w > max {
			max = w
		}
	}
	return max
}

// InPriceRange 判断价格是否落在画像的可接受区间内。
// 区间未建立（PriceMax<=0）时放通。
func (p *UserProfile) InPriceRange(price float64) bool {
	if p.PriceMax <= 0 {
		return true
	}
	return price >= p.PriceMin && price <= p.PriceMax
}
