package feature

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenRegex 在包初始化时编译一次，用于切词
var tokenRegex = regexp.MustCompile(`[^a-z0-9_-]+`)

// Vectorizer 把商品文本向量化为定长 TF-IDF 向量。
//
// IDF 是语料库全局量：任何商品文本变更、商品增删都会改变所有向量，
// 因此只支持整体 Fit + 重新向量化，不支持增量更新。
//
// 词表取全语料中文档频率最高的 Dim 个词（并列时按字典序），
// 保证同一份语料两次 Fit 产出完全一致的向量。
type Vectorizer struct {
	// Dim 向量维度，<=0 时取 100
	Dim int

	vocab      []string
	vocabIndex map[string]int
	idf        []float64
	docCount   int
}

// NewVectorizer 创建一个向量器。
func NewVectorizer(dim int) *Vectorizer {
	if dim <= 0 {
		dim = 100
	}
	return &Vectorizer{Dim: dim}
}

// Fit 在整个语料上统计文档频率并固定词表与 IDF。
func (v *Vectorizer) Fit(docs []string) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	// 文档频率降序，并列按字典序，保证词表确定性
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.Dim {
		terms = terms[:v.Dim]
	}

	v.docCount = len(docs)
	v.vocab = terms
	v.vocabIndex = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, t := range terms {
		v.vocabIndex[t] = i
		// 平滑 IDF：log((1+N)/(1+df)) + 1，词越稀有权重越高
		v.idf[i] = math.Log(float64(1+v.docCount)/float64(1+df[t])) + 1
	}
}

// Vector 返回文本的定长 TF-IDF 向量（L2 归一化；词表不足 Dim 时尾部补零）。
func (v *Vectorizer) Vector(doc string) []float64 {
	out := make([]float64, v.Dim)
	if len(v.vocab) == 0 {
		return out
	}

	tokens := tokenize(doc)
	if len(tokens) == 0 {
		return out
	}
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	var norm float64
	for tok, cnt := range tf {
		idx, ok := v.vocabIndex[tok]
		if !ok {
			continue
		}
		val := (cnt / float64(len(tokens))) * v.idf[idx]
		out[idx] = val
		norm += val * val
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range out {
			out[i] /= norm
		}
	}
	return out
}

// VocabSize 返回实际词表大小（<= Dim）。
func (v *Vectorizer) VocabSize() int { return len(v.vocab) }

// tokenize 小写化后按非字母数字切分，丢弃单字符词。
func tokenize(doc string) []string {
	raw := tokenRegex.Split(strings.ToLower(doc), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < 2 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// CosineSimilarity 计算两个等长向量的余弦相似度。
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
