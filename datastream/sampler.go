package datastream

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
)

// weightedGen 依固定的機率表抽出 index 0..n-1；
// ZipfDataGenerator 與 UniformDataGenerator 共用這份實作。
type weightedGen struct {
	n       int
	weights []float64
	cdf     []float64
	rng     *rand.Rand
}

func newWeightedGen(weights []float64, seed int64) weightedGen {
	cdf := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		sum += w
		cdf[i] = sum
	}
	return weightedGen{
		n:       len(weights),
		weights: weights,
		cdf:     cdf,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Next 產生一筆查詢 (回傳索引 0~n-1)
func (g *weightedGen) Next() int {
	r := g.rng.Float64()
	i := sort.SearchFloat64s(g.cdf, r)
	// 浮點誤差可能讓 cdf 最後一格略小於 1
	return min(i, g.n-1)
}

// GenerateSequence 產生指定長度的查詢序列
func (g *weightedGen) GenerateSequence(seqLen int) []int {
	seq := make([]int, seqLen)
	for i := range seq {
		seq[i] = g.Next()
	}
	return seq
}

// WriteSequenceToFile 產生 k 筆資料並以 int32 寫入二進位檔案
func (g *weightedGen) WriteSequenceToFile(filename string, k int) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	for _, v := range g.GenerateSequence(k) {
		if err := binary.Write(w, binary.LittleEndian, int32(v)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// GetDistribute 回傳 index -> 機率
func (g *weightedGen) GetDistribute() map[int]float64 {
	result := make(map[int]float64, g.n)
	for i, w := range g.weights {
		result[i] = w
	}
	return result
}

// GetKeyMap 回傳 key -> 機率，key 即 index
func (g *weightedGen) GetKeyMap() map[int64]float64 {
	result := make(map[int64]float64, g.n)
	for i, w := range g.weights {
		result[int64(i)] = w
	}
	return result
}

// GetCDF 回傳累積分布的拷貝
func (g *weightedGen) GetCDF() []float64 {
	cdf := make([]float64, g.n)
	copy(cdf, g.cdf)
	return cdf
}

func (g *weightedGen) GetPDF() []float64 {
	pdf := make([]float64, g.n)
	copy(pdf, g.weights)
	return pdf
}

func (g *weightedGen) Entropy() float64 {
	h := 0.0
	for _, p := range g.weights {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

func (g *weightedGen) DistributeToCSV(writer *csv.Writer) error {
	keys := make([]string, 0, g.n+2)
	probs := make([]string, 0, g.n+2)
	keys = append(keys, "", "")
	probs = append(probs, "", "")
	for i, w := range g.weights {
		keys = append(keys, fmt.Sprintf("%d", i))
		probs = append(probs, fmt.Sprintf("%f", w))
	}
	if err := writer.Write(keys); err != nil {
		return err
	}
	if err := writer.Write(probs); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func (g *weightedGen) Close() error {
	return nil
}

// SequenceReader 依序讀回 WriteSequenceToFile 寫出的查詢序列
type SequenceReader struct {
	seq []int
	pos int
}

func NewSequenceReaderFromFile(filename string) (*SequenceReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readSequence(bufio.NewReader(file))
}

func readSequence(r io.Reader) (*SequenceReader, error) {
	var seq []int
	var v int32
	for {
		err := binary.Read(r, binary.LittleEndian, &v)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: sequence: %w", ErrBadBenchFile, err)
		}
		seq = append(seq, int(v))
	}
	return &SequenceReader{seq: seq}, nil
}

// Next 取得下一個值，若無資料則回傳 false
func (sr *SequenceReader) Next() (int, bool) {
	if sr.pos >= len(sr.seq) {
		return 0, false
	}
	val := sr.seq[sr.pos]
	sr.pos++
	return val, true
}
