package datastream

import (
	"math"
	"math/rand"
)

// ZipfDataGenerator 產生符合 Zipf 分布的查詢序列。
// index i 的權重為 1/(rank+b)^a，rank 會在建構時隨機打亂，
// 所以熱門的 key 不一定是小的 index。
type ZipfDataGenerator struct {
	weightedGen
	a, b float64
}

var _ DataStream = (*ZipfDataGenerator)(nil)

func NewZipfDataGenerator(n int, a, b float64, seed int64) *ZipfDataGenerator {
	weights := make([]float64, n)
	var sum float64
	for i := 1; i <= n; i++ {
		weights[i-1] = 1.0 / math.Pow(float64(i)+b, a)
		sum += weights[i-1]
	}
	// 正規化
	for i := range weights {
		weights[i] /= sum
	}
	// 打亂 rank 用的是另一個 rng，不會消耗 Next 的亂數
	rand.New(rand.NewSource(seed)).Shuffle(len(weights), func(i, j int) {
		weights[i], weights[j] = weights[j], weights[i]
	})
	return &ZipfDataGenerator{
		weightedGen: newWeightedGen(weights, seed),
		a:           a,
		b:           b,
	}
}

// Params 回傳建構時的 (a, b)
func (z *ZipfDataGenerator) Params() (a, b float64) {
	return z.a, z.b
}
