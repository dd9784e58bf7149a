package skipmap

import "math/rand/v2"

// promotion 是節點往上多佔一層的機率
const promotion = 0.3

// levelGenerator 依幾何分布抽出新節點的高度：
// P(level = k) = p^(k-1) * (1-p)，k < maxHeight；剩餘機率集中在 maxHeight。
type levelGenerator struct {
	rng       *rand.Rand
	maxHeight int
}

func newLevelGenerator(seed uint64, maxHeight int) levelGenerator {
	return levelGenerator{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxHeight: maxHeight,
	}
}

func (g *levelGenerator) draw() int {
	level := 1
	for level < g.maxHeight && g.rng.Float64() < promotion {
		level++
	}
	return level
}
