package profile

import (
	"sync"

	"github.com/rushteam/reco/core"
)

// Set 是一代推荐结构中的画像集合。
//
// 读多写少：只有在线更新路径通过 Patch 修补单个画像。
// 画像条目以快照语义对外：Get 返回的指针指向不可变对象，
// Patch 写时复制后整体换指针，召回侧读权重 map 不需要加锁。
type Set struct {
	mu       sync.RWMutex
	profiles map[string]*core.UserProfile
}

func NewSet() *Set {
	return &Set{profiles: make(map[string]*core.UserProfile)}
}

func (s *Set) put(p *core.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

// Get 返回用户画像快照；不存在时返回 (nil, false)。
// 返回的对象不会被后续 Patch 改动，可以无锁读取。
func (s *Set) Get(userID string) (*core.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	return p, ok
}

// Patch 在线增量修补：累加类目/品牌权重，画像不存在时创建。
// 写时复制：在深拷贝上累加后换指针，已取走旧快照的读者不受影响。
// 派生分（多样性/忠诚度/价格区间）不在此处刷新。
func (s *Set) Patch(userID, category, brand string, w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = core.NewUserProfile(userID)
	} else {
		p = p.Clone()
	}
	p.AddWeight(category, brand, w)
	s.profiles[userID] = p
}

// Len 返回画像数量。
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
