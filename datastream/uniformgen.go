package datastream

// UniformDataGenerator 產生符合平均分布的查詢序列，
// 每個索引出現機率皆相同
type UniformDataGenerator struct {
	weightedGen
}

var _ DataStream = (*UniformDataGenerator)(nil)

func NewUniformDataGenerator(n int, seed int64) *UniformDataGenerator {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return &UniformDataGenerator{weightedGen: newWeightedGen(weights, seed)}
}
