package core

import "strings"

// Product 是商品目录中的一条商品记录。
//
// 在一次推荐周期内视为不可变：目录/订单操作在外部系统修改商品后，
// 通过 Retrain 以新的一代结构生效。派生出的特征向量由 feature 包
// 缓存在代内，目录重建时整体失效。
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Brand       string
	Tags        []string

	// 价格（单位由业务自定，保证同目录内一致即可）
	MRP             float64 // 标牌价
	DiscountedPrice float64 // 实际成交价，0 时回退到 MRP

	// 评分
	RatingAvg   float64
	RatingCount int

	// 热度计数（由订单/浏览服务维护）
	ViewCount     int
	PurchaseCount int

	// B2B 业务属性
	BusinessType string  // 适配的买家业态：supermarket / convenience / kiosk ...
	ProfitMargin float64 // 利润率，经验范围 0.1~0.4
	CurrentStock int     // 当前库存件数
}

// Price 返回参与价格计算的有效价格。
func (p *Product) Price() float64 {
	if p.DiscountedPrice > 0 {
		return p.DiscountedPrice
	}
	return p.MRP
}

// Popularity 返回未归一化的热度原始分：购买权重高于浏览。
func (p *Product) Popularity() float64 {
	return float64(p.PurchaseCount)*2 + float64(p.ViewCount)
}

// Document 返回参与 TF-IDF 的文本语料：名称、描述、品牌、类目、标签拼接。
func (p *Product) Document() string {
	parts := make([]string, 0, 4+len(p.Tags))
	parts = append(parts, p.Name, p.Description, p.Brand, p.Category)
	parts = append(parts, p.Tags...)
	return strings.Join(parts, " ")
}
