// Package engine 组装推荐引擎：持有数据代次、调度各算法 Node、
// 对外提供 Recommend / RecordInteraction / Retrain / Status 四个入口。
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/reco/cluster"
	"github.com/rushteam/reco/config"
	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/feature"
	"github.com/rushteam/reco/filter"
	"github.com/rushteam/reco/matrix"
	"github.com/rushteam/reco/pipeline"
	"github.com/rushteam/reco/profile"
	"github.com/rushteam/reco/recall"
	"github.com/rushteam/reco/rerank"
)

// RecommendType 是推荐策略类型。
type RecommendType string

const (
	TypeHybrid        RecommendType = "hybrid"
	TypeCollaborative RecommendType = "collaborative"
	TypeContent       RecommendType = "content"
	TypeSegment       RecommendType = "segment"
	TypeTrending      RecommendType = "trending"
)

// ParseType 解析策略类型，未知取 hybrid。
func ParseType(s string) RecommendType {
	switch RecommendType(s) {
	case TypeCollaborative, TypeContent, TypeSegment, TypeTrending:
		return RecommendType(s)
	default:
		return TypeHybrid
	}
}

// generation 是一代完整的派生数据快照。
//
// 除矩阵单元格与画像权重的在线增量外（各自持锁），代内数据只读。
// 重训在旁侧构建新代，构建成功后一次指针交换完成切换，
// 服务中的请求要么看到完整的旧代，要么看到完整的新代。
type generation struct {
	id      int64
	builtAt time.Time

	matrix   *matrix.Matrix
	features *feature.Store
	profiles *profile.Set
	segments *cluster.Segments

	// interactions 本代累计的交互条数（重训带入 + 在线新增）
	interactions atomic.Int64
}

// Engine 是推荐引擎。通过 New 创建，零值不可用。
type Engine struct {
	cfg *config.Config

	catalog      core.CatalogSource
	interactions core.InteractionSource
	users        core.UserSource

	// kv 可选的热门榜缓存后端，nil 时热门榜只走目录快照
	kv core.KeyValueStore

	logger zerolog.Logger

	gen    atomic.Pointer[generation]
	genSeq atomic.Int64

	// retrainMu 串行化重训：重训是分钟级批处理，并发触发无意义
	retrainMu sync.Mutex
}

// Option 配置 Engine 的可选依赖。
type Option func(*Engine)

// WithLogger 注入日志器，默认静默。
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithKeyValueStore 注入热门榜缓存后端（配合 Config.TrendingKey）。
func WithKeyValueStore(kv core.KeyValueStore) Option {
	return func(e *Engine) { e.kv = kv }
}

// New 创建引擎。创建后需要先 Retrain 一次才能服务请求。
func New(
	cfg *config.Config,
	catalog core.CatalogSource,
	interactions core.InteractionSource,
	users core.UserSource,
	opts ...Option,
) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:          cfg,
		catalog:      catalog,
		interactions: interactions,
		users:        users,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var errNotReady = core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotReady,
	"engine: no generation built yet, call Retrain first")

// Recommend 为指定买家生成推荐列表。
//
// typ 为策略类型（未知取 hybrid），limit 为最终条数（<=0 返回空列表）。
// 个性化策略在本路径无产出时按 协同 → 内容 → 分群 → 热门 逐级降级；
// 请求上下文已超期时直接走热门快照。结果仅在目录为空时为空。
func (e *Engine) Recommend(
	ctx context.Context,
	userID string,
	typ RecommendType,
	limit int,
) ([]*core.Item, error) {
	gen := e.gen.Load()
	if gen == nil {
		return nil, errNotReady
	}
	if limit <= 0 {
		return []*core.Item{}, nil
	}

	rctx := e.buildContext(gen, userID, typ)

	// 上游给的预算已经花完，个性化计算只会超时，直接出兜底结果
	if ctx.Err() != nil {
		e.logger.Info().Str("user_id", userID).Msg("request context expired, serving trending")
		ctx = context.WithoutCancel(ctx)
		typ = TypeTrending
	}

	for _, t := range fallbackChain(typ) {
		items, err := e.runPipeline(ctx, gen, rctx, t, limit)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			return items, nil
		}
		if t != TypeTrending {
			e.logger.Info().
				Str("user_id", userID).
				Str("from", string(t)).
				Msg("recall empty, falling back")
		}
	}
	return []*core.Item{}, nil
}

// fallbackChain 返回从 typ 开始的降级序列。
// hybrid 本身已含热门兜底，只在目录为空时无产出，无需再降级。
func fallbackChain(typ RecommendType) []RecommendType {
	chain := []RecommendType{TypeCollaborative, TypeContent, TypeSegment, TypeTrending}
	for i, t := range chain {
		if t == typ {
			return chain[i:]
		}
	}
	return []RecommendType{TypeHybrid, TypeTrending}
}

func (e *Engine) buildContext(gen *generation, userID string, typ RecommendType) *core.RecommendContext {
	rctx := &core.RecommendContext{
		UserID: userID,
		Scene:  string(typ),
	}
	if p, ok := gen.profiles.Get(userID); ok {
		rctx.User = p
	}
	return rctx
}

// runPipeline 为单个策略装配并执行一条 Node 链。
//
// 召回阶段统一 2× 过采样，给被交互过滤和多样性约束留余量；
// rerank.TopN 最后收口到 limit。
func (e *Engine) runPipeline(
	ctx context.Context,
	gen *generation,
	rctx *core.RecommendContext,
	typ RecommendType,
	limit int,
) ([]*core.Item, error) {
	oversample := limit * 2

	var nodes []pipeline.Node
	if typ == TypeHybrid {
		nodes = append(nodes, &recall.Fanout{
			Sources: []recall.WeightedSource{
				{Source: e.collaborative(gen, oversample), Weight: e.cfg.Hybrid.Collaborative},
				{Source: e.content(gen, oversample), Weight: e.cfg.Hybrid.Content},
				{Source: e.trending(gen, oversample), Weight: e.cfg.Hybrid.Trending},
				{Source: e.segment(gen, oversample), Weight: e.cfg.Hybrid.Segment},
			},
			Timeout: e.cfg.SourceTimeout(),
			Logger:  e.logger,
		})
	} else {
		nodes = append(nodes, &recall.SingleSource{Source: e.source(gen, typ, oversample)})
	}

	nodes = append(nodes,
		&filter.SeenFilter{Matrix: gen.matrix},
		&rerank.Diversity{
			Features:          gen.features,
			Limit:             limit,
			MaxPerCategory:    e.cfg.Diversity.MaxPerCategory,
			MaxPerBrand:       e.cfg.Diversity.MaxPerBrand,
			BusinessTypeBoost: e.cfg.Diversity.BusinessTypeBoost,
		},
	)
	if len(e.cfg.BoostRules) > 0 {
		nodes = append(nodes, &rerank.RuleBoost{Rules: e.cfg.BoostRules, Logger: e.logger})
	}
	if e.cfg.Business.Enabled {
		nodes = append(nodes, &rerank.Business{
			Features:          gen.features,
			RelevanceWeight:   e.cfg.Business.RelevanceWeight,
			MarginWeight:      e.cfg.Business.MarginWeight,
			StockWeight:       e.cfg.Business.StockWeight,
			LowStockThreshold: e.cfg.Business.LowStockThreshold,
		})
	}
	nodes = append(nodes, &rerank.TopN{N: limit})

	p := &pipeline.Pipeline{Nodes: nodes}
	return p.Run(ctx, rctx, nil)
}

func (e *Engine) source(gen *generation, typ RecommendType, topK int) recall.Source {
	switch typ {
	case TypeCollaborative:
		return e.collaborative(gen, topK)
	case TypeContent:
		return e.content(gen, topK)
	case TypeSegment:
		return e.segment(gen, topK)
	default:
		return e.trending(gen, topK)
	}
}

func (e *Engine) collaborative(gen *generation, topK int) *recall.Collaborative {
	return &recall.Collaborative{
		Matrix:          gen.matrix,
		TopKNeighbors:   e.cfg.Collaborative.TopKNeighbors,
		SimilarityFloor: e.cfg.Collaborative.SimilarityFloor,
		TopK:            topK,
	}
}

func (e *Engine) content(gen *generation, topK int) *recall.Content {
	return &recall.Content{
		Features: gen.features,
		Matrix:   gen.matrix,
		Profile:  gen.profiles.Get,
		TopK:     topK,
		MinScore: e.cfg.Content.MinScore,
	}
}

func (e *Engine) segment(gen *generation, topK int) *recall.Segment {
	return &recall.Segment{
		Segments: gen.segments,
		Matrix:   gen.matrix,
		TopK:     topK,
	}
}

func (e *Engine) trending(gen *generation, topK int) *recall.Trending {
	return &recall.Trending{
		Features: gen.features,
		Store:    e.kv,
		Key:      e.cfg.TrendingKey,
		TopK:     topK,
	}
}

// RecordInteraction 在线记录一条交互：矩阵单元格加法累积，
// 画像类目/品牌权重同步修补。派生分（多样性/忠诚度/分群）保持
// 陈旧直到下次重训，这是刻意取舍。
//
// 未收录的商品记日志后放弃（空操作），不向调用方报错。
func (e *Engine) RecordInteraction(
	_ context.Context,
	userID, productID string,
	kind core.InteractionKind,
	weight float64,
) error {
	gen := e.gen.Load()
	if gen == nil {
		return errNotReady
	}
	if userID == "" || productID == "" {
		return nil
	}

	p, ok := gen.features.Product(productID)
	if !ok {
		e.logger.Info().
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("record interaction: product not in catalog, dropped")
		return nil
	}

	in := &core.Interaction{
		UserID:    userID,
		ProductID: productID,
		Kind:      kind,
		Weight:    weight,
		Timestamp: time.Now(),
	}
	w := in.BaseWeight()

	gen.matrix.Add(userID, productID, w)
	gen.profiles.Patch(userID, p.Category, p.Brand, w)
	gen.interactions.Add(1)
	return nil
}

// Retrain 全量重建：目录 → 特征，交互日志 → 矩阵 → 画像 → 分群，
// 全部在旁侧构建，成功后一次指针交换切换到新代。
//
// 任一数据源读取失败返回 REBUILD_FAILED，旧代继续服务。
// 配置了缓存后端时顺带发布热门榜快照（尽力而为，失败只记日志）。
func (e *Engine) Retrain(ctx context.Context) error {
	e.retrainMu.Lock()
	defer e.retrainMu.Unlock()

	start := time.Now()

	products, err := e.catalog.ListActiveProducts(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("retrain: list products failed")
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeRebuildFailed,
			"engine: retrain aborted, catalog unavailable")
	}
	interactions, err := e.interactions.ListInteractions(ctx, time.Time{})
	if err != nil {
		e.logger.Error().Err(err).Msg("retrain: list interactions failed")
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeRebuildFailed,
			"engine: retrain aborted, interaction log unavailable")
	}

	productMap := make(map[string]*core.Product, len(products))
	for _, p := range products {
		if p != nil && p.ID != "" {
			productMap[p.ID] = p
		}
	}

	metas, knownUsers := e.resolveUsers(ctx, interactions)

	feats := (&feature.Extractor{VectorDim: e.cfg.VectorDim}).Extract(products)
	m := (&matrix.Builder{
		Halflife: e.cfg.Halflife(),
		Logger:   e.logger,
	}).Build(interactions, productMap, knownUsers)
	profiles := (&profile.Builder{Logger: e.logger}).Build(m, feats, metas)
	segments := cluster.BuildSegments(profiles, m.Users(), maxPrice(products))

	gen := &generation{
		id:       e.genSeq.Add(1),
		builtAt:  time.Now(),
		matrix:   m,
		features: feats,
		profiles: profiles,
		segments: segments,
	}
	gen.interactions.Store(int64(len(interactions)))

	e.publishTrending(ctx, feats)
	e.gen.Store(gen)

	users, prods := m.Shape()
	e.logger.Info().
		Int64("generation", gen.id).
		Int("users", users).
		Int("products", prods).
		Int("interactions", len(interactions)).
		Dur("took", time.Since(start)).
		Msg("retrain complete")
	return nil
}

// resolveUsers 把交互日志中出现的买家逐个对账到用户表。
// 确认不存在的买家被排除出矩阵（NOT_FOUND），用户服务暂时不可达时
// 保守处理：视为已知买家但不带业态元数据。
func (e *Engine) resolveUsers(
	ctx context.Context,
	interactions []*core.Interaction,
) (map[string]*core.UserMeta, map[string]struct{}) {
	seen := make(map[string]struct{})
	for _, in := range interactions {
		if in != nil && in.UserID != "" {
			seen[in.UserID] = struct{}{}
		}
	}

	metas := make(map[string]*core.UserMeta, len(seen))
	known := make(map[string]struct{}, len(seen))
	for userID := range seen {
		if e.users == nil {
			known[userID] = struct{}{}
			continue
		}
		meta, err := e.users.GetUser(ctx, userID)
		switch {
		case err == nil:
			metas[userID] = meta
			known[userID] = struct{}{}
		case core.IsNotFound(err):
			e.logger.Debug().Str("user_id", userID).Msg("retrain: unknown user excluded")
		default:
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("retrain: user lookup failed, keeping user")
			known[userID] = struct{}{}
		}
	}
	return metas, known
}

func maxPrice(products []*core.Product) float64 {
	var max float64
	for _, p := range products {
		if p == nil {
			continue
		}
		if price := p.Price(); price > max {
			max = price
		}
	}
	return max
}

// publishTrending 把热门榜快照写入缓存后端，供多进程共享。
// 写失败不影响重训结果。
func (e *Engine) publishTrending(ctx context.Context, feats *feature.Store) {
	if e.kv == nil || e.cfg.TrendingKey == "" {
		return
	}
	if err := e.kv.Delete(ctx, e.cfg.TrendingKey); err != nil && !core.IsStoreNotFound(err) {
		e.logger.Warn().Err(err).Msg("publish trending: reset key failed")
		return
	}
	for _, id := range feats.SortedIDs() {
		f, _ := feats.Get(id)
		if err := e.kv.ZAdd(ctx, e.cfg.TrendingKey, f.PopularityNorm, id); err != nil {
			e.logger.Warn().Err(err).Str("product_id", id).Msg("publish trending: zadd failed")
			return
		}
	}
}

// Status 是引擎的自检快照。
// Users/MatrixProducts 是矩阵形状（有交互的维度），
// Products 是目录规模，两者在冷目录下可以不同。
type Status struct {
	Ready          bool      `json:"ready"`
	Generation     int64     `json:"generation"`
	LastRetrain    time.Time `json:"last_retrain"`
	Users          int       `json:"users"`
	Products       int       `json:"products"`
	MatrixProducts int       `json:"matrix_products"`
	Interactions   int64     `json:"interactions"`
	Segments       int       `json:"segments"`
}

// Status 返回当前代次的状态。
func (e *Engine) Status() Status {
	gen := e.gen.Load()
	if gen == nil {
		return Status{}
	}
	users, matrixProducts := gen.matrix.Shape()
	st := Status{
		Ready:          true,
		Generation:     gen.id,
		LastRetrain:    gen.builtAt,
		Users:          users,
		Products:       gen.features.Len(),
		MatrixProducts: matrixProducts,
		Interactions:   gen.interactions.Load(),
	}
	if gen.segments != nil {
		st.Segments = gen.segments.K
	}
	return st
}

// 以下方法实现 config.Provider，让引擎的当前代次可以被
// YAML 声明的自定义 Pipeline（config.NewFactory）复用。

func (e *Engine) Matrix() *matrix.Matrix {
	if gen := e.gen.Load(); gen != nil {
		return gen.matrix
	}
	return nil
}

func (e *Engine) Features() *feature.Store {
	if gen := e.gen.Load(); gen != nil {
		return gen.features
	}
	return nil
}

func (e *Engine) Profile(userID string) (*core.UserProfile, bool) {
	if gen := e.gen.Load(); gen != nil {
		return gen.profiles.Get(userID)
	}
	return nil, false
}

func (e *Engine) Segments() *cluster.Segments {
	if gen := e.gen.Load(); gen != nil {
		return gen.segments
	}
	return nil
}

func (e *Engine) TrendingStore() (core.KeyValueStore, string) {
	return e.kv, e.cfg.TrendingKey
}

var _ config.Provider = (*Engine)(nil)
