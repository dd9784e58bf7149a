package saalgo

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'saalgo'
func tracer() tracing.Trace {
	return tracing.Select("saalgo")
}

// Solution 表示一個解，需要實現以下接口
type Solution interface {
	// Clone 創建當前解的深拷貝
	Clone() Solution

	// GetCost 返回當前解的成本，越小越好
	GetCost() float64

	// GenerateNeighbor 以 rng 生成鄰居解，不可修改接收者本身
	GenerateNeighbor(rng *rand.Rand) Solution
}

// ProgressCallback 進度回報回調函數類型
// 參數: iteration (當前迭代次數), maxIterations (最大迭代次數), temperature (當前溫度), bestCost (目前最佳成本), currentCost (當前成本)
type ProgressCallback func(iteration int, maxIterations int, temperature float64, bestCost float64, currentCost float64)

// SAConfig 模擬退火配置
type SAConfig struct {
	InitialTemp      float64          // 初始溫度
	FinalTemp        float64          // 最終溫度
	CoolingRate      float64          // 冷卻率
	Iterations       int              // 每個溫度的迭代次數
	MaxIterations    int              // 最大總迭代次數
	RandomSeed       int64            // 隨機種子
	ProgressCallback ProgressCallback // 進度回報回調函數（可選）
	ProgressInterval int              // 進度回報間隔（每 N 次迭代回報一次，0 表示不回報）
}

// DefaultConfig 返回默認配置
func DefaultConfig() *SAConfig {
	return &SAConfig{
		InitialTemp:   1000.0,
		FinalTemp:     0.1,
		CoolingRate:   0.95,
		Iterations:    100,
		MaxIterations: 10000,
		RandomSeed:    time.Now().UnixNano(),
	}
}

// SimulatedAnnealing 模擬退火算法主結構。
// 亂數來源屬於實例本身，相同的 RandomSeed 會得到相同的搜尋路徑。
type SimulatedAnnealing struct {
	config     *SAConfig
	rng        *rand.Rand
	bestSol    Solution
	bestCost   float64
	iterations int
}

// NewSimulatedAnnealing 創建新的模擬退火實例
func NewSimulatedAnnealing(config *SAConfig) *SimulatedAnnealing {
	if config == nil {
		config = DefaultConfig()
	}
	seed := uint64(config.RandomSeed)
	return &SimulatedAnnealing{
		config: config,
		rng:    rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Run 執行模擬退火算法，回傳過程中見過的最佳解與其成本
func (sa *SimulatedAnnealing) Run(initialSolution Solution) (Solution, float64) {
	currentSol := initialSolution.Clone()
	currentCost := currentSol.GetCost()

	sa.bestSol = currentSol.Clone()
	sa.bestCost = currentCost

	temperature := sa.config.InitialTemp
	cfg := sa.config

	for temperature > cfg.FinalTemp && sa.iterations < cfg.MaxIterations {
		for i := 0; i < cfg.Iterations; i++ {
			neighborSol := currentSol.GenerateNeighbor(sa.rng)
			neighborCost := neighborSol.GetCost()

			if sa.shouldAccept(neighborCost-currentCost, temperature) {
				currentSol = neighborSol
				currentCost = neighborCost

				if currentCost < sa.bestCost {
					sa.bestSol = currentSol.Clone()
					sa.bestCost = currentCost
				}
			}

			sa.iterations++

			if cfg.ProgressCallback != nil && cfg.ProgressInterval > 0 &&
				sa.iterations%cfg.ProgressInterval == 0 {
				cfg.ProgressCallback(sa.iterations, cfg.MaxIterations, temperature, sa.bestCost, currentCost)
			}

			if sa.iterations >= cfg.MaxIterations {
				break
			}
		}

		// 冷卻
		temperature *= cfg.CoolingRate
	}
	tracer().Debugf("%d iterations, best cost %.6f, final temperature %.4f",
		sa.iterations, sa.bestCost, temperature)
	return sa.bestSol, sa.bestCost
}

// shouldAccept 以 Metropolis 準則決定是否接受新解
func (sa *SimulatedAnnealing) shouldAccept(deltaCost, temperature float64) bool {
	if deltaCost < 0 {
		return true
	}
	return sa.rng.Float64() < math.Exp(-deltaCost/temperature)
}

// GetBestSolution 返回最佳解
func (sa *SimulatedAnnealing) GetBestSolution() Solution {
	return sa.bestSol
}

// GetBestCost 返回最佳成本
func (sa *SimulatedAnnealing) GetBestCost() float64 {
	return sa.bestCost
}

// GetIterations 返回迭代次數
func (sa *SimulatedAnnealing) GetIterations() int {
	return sa.iterations
}

// Reset 重置算法狀態，亂數來源不會重新播種
func (sa *SimulatedAnnealing) Reset() {
	sa.bestSol = nil
	sa.bestCost = 0
	sa.iterations = 0
}
