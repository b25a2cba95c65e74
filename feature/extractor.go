package feature

import (
	"sort"

	"github.com/rushteam/reco/core"
)

// ProductFeatures 是单个商品的派生特征：
// 定长 TF-IDF 文本向量 + 归一化数值信号 + 类别标识。
type ProductFeatures struct {
	ProductID string

	// Vector 是目录全局语料下的 TF-IDF 向量
	Vector []float64

	// 类别标识，用于精确匹配打分与多样性约束
	Category     string
	Brand        string
	BusinessType string

	// 归一化数值信号（[0,1]）
	PriceNorm      float64 // 目录内 Min-Max
	RatingNorm     float64 // 评分 / 5
	PopularityNorm float64 // log 缩放热度
}

// Store 是一代推荐结构中的商品特征仓：目录快照 + 派生特征。
// 构建后只读；目录变更通过 Retrain 产生新的一代 Store 整体替换。
type Store struct {
	products map[string]*core.Product
	features map[string]*ProductFeatures

	// sortedIDs 按商品 ID 升序，保证全目录扫描的确定性
	sortedIDs []string

	categoryCount int
}

// Extractor 从目录快照构建特征仓。
//
// IDF 是语料库全局量，目录任何文本变化都需要整体重建，
// 因此 Extract 是批处理操作，应在请求路径之外执行。
type Extractor struct {
	// VectorDim TF-IDF 向量维度，<=0 时取 100
	VectorDim int
}

// Extract 对目录全集做一次完整特征抽取。
func (e *Extractor) Extract(products []*core.Product) *Store {
	s := &Store{
		products: make(map[string]*core.Product, len(products)),
		features: make(map[string]*ProductFeatures, len(products)),
	}

	docs := make([]string, 0, len(products))
	categories := make(map[string]struct{})
	var minPrice, maxPrice, maxPop float64
	first := true
	for _, p := range products {
		if p == nil || p.ID == "" {
			continue
		}
		s.products[p.ID] = p
		s.sortedIDs = append(s.sortedIDs, p.ID)
		docs = append(docs, p.Document())
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}

		price := p.Price()
		if first {
			minPrice, maxPrice = price, price
			first = false
		} else {
			if price < minPrice {
				minPrice = price
			}
			if price > maxPrice {
				maxPrice = price
			}
		}
		if pop := p.Popularity(); pop > maxPop {
			maxPop = pop
		}
	}
	sort.Strings(s.sortedIDs)
	s.categoryCount = len(categories)

	vectorizer := NewVectorizer(e.VectorDim)
	vectorizer.Fit(docs)

	priceNorm := &MinMaxNormalizer{Min: minPrice, Max: maxPrice}
	popNorm := &LogNormalizer{Max: maxPop}

	for _, id := range s.sortedIDs {
		p := s.products[id]
		s.features[id] = &ProductFeatures{
			ProductID:      id,
			Vector:         vectorizer.Vector(p.Document()),
			Category:       p.Category,
			Brand:          p.Brand,
			BusinessType:   p.BusinessType,
			PriceNorm:      priceNorm.NormalizeValue(p.Price()),
			RatingNorm:     p.RatingAvg / 5.0,
			PopularityNorm: popNorm.NormalizeValue(p.Popularity()),
		}
	}
	return s
}

// Get 返回商品特征；不存在时返回 (nil, false)。
func (s *Store) Get(productID string) (*ProductFeatures, bool) {
	f, ok := s.features[productID]
	return f, ok
}

// Product 返回目录快照中的商品；不存在时返回 (nil, false)。
func (s *Store) Product(productID string) (*core.Product, bool) {
	p, ok := s.products[productID]
	return p, ok
}

// SortedIDs 返回按 ID 升序的商品全集，供确定性扫描。
func (s *Store) SortedIDs() []string { return s.sortedIDs }

// CategoryCount 返回目录中不同类目的数量（多样性分母）。
func (s *Store) CategoryCount() int { return s.categoryCount }

// Len 返回商品数量。
func (s *Store) Len() int { return len(s.sortedIDs) }
