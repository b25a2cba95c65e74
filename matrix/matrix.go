// Package matrix 实现稠密的 用户×商品 交互强度矩阵。
//
// 行为用户、列为商品，单元格为累加的衰减交互权重。维度只增不减：
// 新用户/新商品出现时扩展 id↔index 映射并追加行/列，从不原地收缩。
// 全量重建的内存开销是 O(users×products)，目录规模以千计时可接受，
// 这是一个已知的扩展性上限。
package matrix

import "sync"

// Matrix 是一代推荐结构中的交互矩阵。
//
// 读路径（相似度扫描）远多于写路径，写只有在线更新的单元素增量，
// 因此用一把短持有的 RWMutex：Add 只在写入瞬间持写锁，
// 不会阻塞无关用户/商品的并发读。
type Matrix struct {
	mu sync.RWMutex

	userIndex    map[string]int
	productIndex map[string]int
	userIDs      []string
	productIDs   []string

	rows [][]float64
}

func New() *Matrix {
	return &Matrix{
		userIndex:    make(map[string]int),
		productIndex: make(map[string]int),
	}
}

// Add 向 (userID, productID) 单元格累加权重，未知的用户/商品会自动扩展维度。
// 多次交互在同一单元格上是加法累积，不是覆盖。
func (m *Matrix) Add(userID, productID string, w float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ui, ok := m.userIndex[userID]
	if !ok {
		ui = len(m.userIDs)
		m.userIndex[userID] = ui
		m.userIDs = append(m.userIDs, userID)
		m.rows = append(m.rows, make([]float64, len(m.productIDs)))
	}

	pi, ok := m.productIndex[productID]
	if !ok {
		pi = len(m.productIDs)
		m.productIndex[productID] = pi
		m.productIDs = append(m.productIDs, productID)
		for i := range m.rows {
			m.rows[i] = append(m.rows[i], 0)
		}
	}

	m.rows[ui][pi] += w
}

// Weight 返回单元格当前值；用户或商品未知时返回 (0, false)。
func (m *Matrix) Weight(userID, productID string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ui, ok := m.userIndex[userID]
	if !ok {
		return 0, false
	}
	pi, ok := m.productIndex[productID]
	if !ok {
		return 0, false
	}
	return m.rows[ui][pi], true
}

// HasUser 判断用户是否已有矩阵行。
func (m *Matrix) HasUser(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.userIndex[userID]
	return ok
}

// UserRow 返回用户行的副本（长度为当前商品数）；用户未知时返回 (nil, false)。
// 返回副本是为了让相似度扫描不持锁进行。
func (m *Matrix) UserRow(userID string) ([]float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ui, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}
	row := make([]float64, len(m.productIDs))
	copy(row, m.rows[ui])
	return row, true
}

// UserInteractions 返回用户所有非零单元格，key 为商品 ID。
func (m *Matrix) UserInteractions(userID string) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ui, ok := m.userIndex[userID]
	if !ok {
		return nil
	}
	out := make(map[string]float64)
	for pi, w := range m.rows[ui] {
		if w > 0 {
			out[m.productIDs[pi]] = w
		}
	}
	return out
}

// Users 返回所有用户 ID 的副本，顺序即行序（稳定）。
func (m *Matrix) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.userIDs))
	copy(out, m.userIDs)
	return out
}

// Products 返回所有商品 ID 的副本，顺序即列序（稳定）。
func (m *Matrix) Products() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.productIDs))
	copy(out, m.productIDs)
	return out
}

// ProductID 返回列下标对应的商品 ID，越界时返回空串。
func (m *Matrix) ProductID(idx int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if idx < 0 || idx >= len(m.productIDs) {
		return ""
	}
	return m.productIDs[idx]
}

// Shape 返回 (用户数, 商品数)。
func (m *Matrix) Shape() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.userIDs), len(m.productIDs)
}
