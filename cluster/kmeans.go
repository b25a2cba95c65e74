// Package cluster 实现买家行为分群所用的 K-means。
package cluster

// KMeans 是确定性的 K-means 聚类器。
//
// 质心初始化采用最远点（maximin）策略而非随机采样：
// 相同输入两次 Fit 产出完全一致的划分，推荐输出因此可复现。
// 聚类是 CPU 密集的批处理操作，只在全量重建时运行。
type KMeans struct {
	// K 簇数量，会被裁剪到 [1, len(points)]
	K int

	// MaxIter 最大迭代轮数，<=0 时取 50
	MaxIter int

	// Tolerance 质心移动平方和的收敛阈值，<=0 时取 1e-6
	Tolerance float64
}

// Fit 对数据点聚类，返回与 points 对齐的簇标签。
// 空输入返回 nil。
func (km *KMeans) Fit(points [][]float64) []int {
	n := len(points)
	if n == 0 {
		return nil
	}

	k := km.K
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 50
	}
	tolerance := km.Tolerance
	if tolerance <= 0 {
		tolerance = 1e-6
	}

	dim := len(points[0])
	centroids := km.initCentroids(points, k, dim)
	labels := make([]int, n)

	for iter := 0; iter < maxIter; iter++ {
		// 分配：每个点归入最近质心（并列取下标更小的簇）
		for i, p := range points {
			best := 0
			bestDist := distSq(p, centroids[0])
			for c := 1; c < k; c++ {
				if d := distSq(p, centroids[c]); d < bestDist {
					best = c
					bestDist = d
				}
			}
			labels[i] = best
		}

		// 更新：重算质心；空簇保留旧质心
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for d := range p {
				sums[c][d] += p[d]
			}
		}

		var shift float64
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < dim; d++ {
				next := sums[c][d] / float64(counts[c])
				delta := next - centroids[c][d]
				shift += delta * delta
				centroids[c][d] = next
			}
		}
		if shift < tolerance {
			break
		}
	}
	return labels
}

// initCentroids 最远点初始化：首个质心取第一个点，
// 其后每次取距已选质心集合最远的点（并列取下标更小的）。
func (km *KMeans) initCentroids(points [][]float64, k, dim int) [][]float64 {
	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = make([]float64, dim)
	}
	copy(centroids[0], points[0])

	minDist := make([]float64, len(points))
	for i, p := range points {
		minDist[i] = distSq(p, centroids[0])
	}

	for c := 1; c < k; c++ {
		far, farDist := 0, -1.0
		for i, d := range minDist {
			if d > farDist {
				far = i
				farDist = d
			}
		}
		copy(centroids[c], points[far])
		for i, p := range points {
			if d := distSq(p, centroids[c]); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centroids
}

func distSq(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
