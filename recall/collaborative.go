package recall

import (
	"context"
	"sort"

	"github.com/rushteam/reco/core"
	"github.com/rushteam/reco/matrix"
)

// Collaborative 是基于用户的协同过滤召回源（User-based CF）。
//
// 核心思想："进货口味相似的买家，会采购相似的商品"
//
// 算法流程：
//  1. 取目标买家的矩阵行（衰减交互权重向量）
//  2. 与其余所有行算余弦相似度，保留高于 SimilarityFloor 的邻居
//  3. 相似度降序取 TopK 邻居
//  4. 邻居交互过、目标买家未交互过的商品，按 邻居权重×归一化相似度 累加
//
// SimilarityFloor 是防止近正交用户放大噪声的可调护栏，不是硬性要求。
// 全量两两相似度扫描是 O(users×products)，目录有界时可接受，
// 用户量上来后这一步是首要的扩展性瓶颈。
//
// 冷启动（无矩阵行 / 无邻居过线）返回空结果，由上层降级到分群/热门路径。
type Collaborative struct {
	Matrix *matrix.Matrix

	// TopKNeighbors 保留的相似买家数，<=0 时取 50
	TopKNeighbors int

	// SimilarityFloor 相似度下限，<=0 时取 0.1
	SimilarityFloor float64

	// TopK 最终返回的商品数，<=0 时取 20
	TopK int
}

func (r *Collaborative) Name() string { return "recall.collaborative" }

func (r *Collaborative) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Matrix == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	targetRow, ok := r.Matrix.UserRow(rctx.UserID)
	if !ok {
		return nil, nil
	}
	owned := r.Matrix.UserInteractions(rctx.UserID)
	if len(owned) == 0 {
		return nil, nil
	}

	topKNeighbors := r.TopKNeighbors
	if topKNeighbors <= 0 {
		topKNeighbors = 50
	}
	floor := r.SimilarityFloor
	if floor <= 0 {
		floor = 0.1
	}

	// 与其余所有用户行算相似度
	type neighbor struct {
		userID     string
		similarity float64
	}
	neighbors := make([]neighbor, 0)
	for _, userID := range r.Matrix.Users() {
		if userID == rctx.UserID {
			continue
		}
		row, ok := r.Matrix.UserRow(userID)
		if !ok {
			continue
		}
		sim := cosineSimilarity(targetRow, row)
		if sim > floor {
			neighbors = append(neighbors, neighbor{userID: userID, similarity: sim})
		}
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	// 相似度降序取 TopK（并列按用户 ID，保证确定性）
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	if len(neighbors) > topKNeighbors {
		neighbors = neighbors[:topKNeighbors]
	}

	var simSum float64
	for _, n := range neighbors {
		simSum += n.similarity
	}

	// 邻居权重 × 归一化相似度 累加到候选分
	itemScores := make(map[string]float64)
	for _, n := range neighbors {
		normSim := n.similarity / simSum
		for productID, w := range r.Matrix.UserInteractions(n.userID) {
			if _, seen := owned[productID]; seen {
				continue
			}
			itemScores[productID] += w * normSim
		}
	}

	list := make([]scored, 0, len(itemScores))
	for id, score := range itemScores {
		list = append(list, scored{id: id, score: score})
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	return toItems(list, topK, "collaborative", "similar_buyers"), nil
}
