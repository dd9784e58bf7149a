package main

import (
	"math/rand/v2"
	"sort"

	"github.com/Hakuto4838/SkipListMap.git/datastream"
	"github.com/Hakuto4838/SkipListMap.git/saalgo"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/analyTool"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/skipmap"
)

// heightCost 是一個 maxHeight 在所有 bench 檔上的平均表現
type heightCost struct {
	height int
	steps  float64 // 平均搜尋步數（以分布機率加權）
	links  float64 // 每個節點平均的 forward 連結數
	cost   float64 // steps + lambda * links
}

// evaluator 對每個 maxHeight 重播所有 bench 檔並記住結果
type evaluator struct {
	benches []*datastream.BenchFile
	seed    uint64
	lambda  float64
	cache   map[int]heightCost
}

func newEvaluator(benches []*datastream.BenchFile, seed uint64, lambda float64) *evaluator {
	return &evaluator{
		benches: benches,
		seed:    seed,
		lambda:  lambda,
		cache:   make(map[int]heightCost),
	}
}

func (e *evaluator) eval(height int) heightCost {
	if c, ok := e.cache[height]; ok {
		return c
	}
	c := heightCost{height: height}
	for _, bf := range e.benches {
		m, err := skipmap.New[int64, float64](height, skipmap.WithSeed(e.seed))
		if err != nil {
			panic(err) // height 一定在 1..MaxHeightLimit 之間
		}
		bf.Replay(m)
		steps, _ := analyTool.AnalyzeStep(m, bf.Dist)
		c.steps += steps
		st := m.Stats()
		if st.Live > 0 {
			total := 0
			for _, n := range st.Levels {
				total += n
			}
			c.links += float64(total) / float64(st.Live)
		}
	}
	nb := float64(len(e.benches))
	c.steps /= nb
	c.links /= nb
	c.cost = c.steps + e.lambda*c.links
	e.cache[height] = c
	return c
}

// evaluated 回傳所有算過的結果，依 height 排序
func (e *evaluator) evaluated() []heightCost {
	out := make([]heightCost, 0, len(e.cache))
	for _, c := range e.cache {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].height < out[j].height })
	return out
}

// heightSolution 是退火搜尋中的一個候選 maxHeight
type heightSolution struct {
	height int
	eval   *evaluator
}

var _ saalgo.Solution = heightSolution{}

func (s heightSolution) Clone() saalgo.Solution { return s }

func (s heightSolution) GetCost() float64 {
	return s.eval.eval(s.height).cost
}

// GenerateNeighbor 往上或往下移動 1 到 2 層，並夾在合法範圍內
func (s heightSolution) GenerateNeighbor(rng *rand.Rand) saalgo.Solution {
	delta := rng.IntN(2) + 1
	if rng.IntN(2) == 0 {
		delta = -delta
	}
	h := min(max(s.height+delta, 1), skipmap.MaxHeightLimit)
	return heightSolution{height: h, eval: s.eval}
}

// tune 從 start 開始退火，回傳最佳的 maxHeight
func tune(e *evaluator, start int, cfg *saalgo.SAConfig) heightCost {
	sa := saalgo.NewSimulatedAnnealing(cfg)
	best, _ := sa.Run(heightSolution{height: start, eval: e})
	return e.eval(best.(heightSolution).height)
}
