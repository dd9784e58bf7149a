package datastream

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	randv2 "math/rand/v2"

	"github.com/RoaringBitmap/roaring/roaring64"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "SLBENCH1"
// uint16   Version: 1
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Query,1=Insert,2=Delete)
//   int64   Key

var (
	benchMagic   = [8]byte{'S', 'L', 'B', 'E', 'N', 'C', 'H', '1'}
	benchVersion = uint16(1)
)

type BenchOp struct {
	Type OperationType
	Key  int64
}

type BenchFile struct {
	Dist map[int64]float64
	Ops  []BenchOp
}

type ZipfV2Info struct {
	Dist    map[int64]float64
	Entropy float64
}

type weightedKey struct {
	key    int64
	weight float64
}

// sortedDist 以升冪 key 排列分布，確保輸出可重現
func sortedDist(dist map[int64]float64) []weightedKey {
	pairs := make([]weightedKey, 0, len(dist))
	for k, w := range dist {
		pairs = append(pairs, weightedKey{key: k, weight: w})
	}
	slices.SortFunc(pairs, func(a, b weightedKey) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})
	return pairs
}

// benchWriter 依序寫出 bench 檔案；第一個錯誤之後的寫入都會被忽略
type benchWriter struct {
	w   *bufio.Writer
	err error
}

func newBenchWriter(w io.Writer) *benchWriter {
	return &benchWriter{w: bufio.NewWriter(w)}
}

func (bw *benchWriter) put(v any) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

// header 寫出 magic、版本與分布
func (bw *benchWriter) header(pairs []weightedKey) {
	bw.put(benchMagic)
	bw.put(benchVersion)
	bw.put(uint16(0)) // reserved
	bw.put(uint32(len(pairs)))
	for _, p := range pairs {
		bw.put(p.key)
		bw.put(p.weight)
	}
}

func (bw *benchWriter) opCount(k int) {
	bw.put(uint64(k))
}

func (bw *benchWriter) op(t OperationType, key int64) {
	bw.put(uint8(t))
	bw.put(key)
}

func (bw *benchWriter) flush() error {
	if bw.err != nil {
		return bw.err
	}
	return bw.w.Flush()
}

// liveKeys 記錄目前在表中的 key；int64 直接轉成 uint64 放進 bitmap
type liveKeys struct {
	bm *roaring64.Bitmap
}

func newLiveKeys() liveKeys {
	return liveKeys{bm: roaring64.New()}
}

func (l liveKeys) has(key int64) bool { return l.bm.Contains(uint64(key)) }
func (l liveKeys) add(key int64)      { l.bm.Add(uint64(key)) }
func (l liveKeys) remove(key int64)   { l.bm.Remove(uint64(key)) }
func (l liveKeys) len() uint64        { return l.bm.GetCardinality() }

// nextOp 決定 key 的操作：不在表中就插入，否則以 deleteRatio 機率刪除，其餘查詢。
// 刪除只會發生在 key 目前存在時。
func nextOp(live liveKeys, key int64, r *randv2.Rand, deleteRatio float64) OperationType {
	if !live.has(key) {
		live.add(key)
		return OpInsert
	}
	if r.Float64() < deleteRatio {
		live.remove(key)
		return OpDelete
	}
	return OpQuery
}

// WriteBench 將 bf 以 SLBENCH1 格式寫入 w
func WriteBench(w io.Writer, bf *BenchFile) error {
	bw := newBenchWriter(w)
	bw.header(sortedDist(bf.Dist))
	bw.opCount(len(bf.Ops))
	for _, op := range bf.Ops {
		bw.op(op.Type, op.Key)
	}
	return bw.flush()
}

// WriteBenchFileFromZipf 以 ZipfDataGenerator 與操作數 k 產生對應 bin 檔。
// 規則：
//   - 若 Zipf.Next() 給的 key 未曾出現過，則輸出 Insert
//   - 若已出現過，則 90% Query、其餘 Insert
//   - 搜尋僅會在該 key 至少插入過一次之後才可能出現
func WriteBenchFileFromZipf(gen *ZipfDataGenerator, k int, filename string) error {
	if gen == nil {
		return fmt.Errorf("%w: nil ZipfDataGenerator", ErrInvalidParams)
	}
	if k < 0 {
		return fmt.Errorf("%w: k=%d", ErrInvalidParams, k)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	bw := newBenchWriter(file)
	bw.header(sortedDist(gen.GetKeyMap()))
	bw.opCount(k)

	everSeen := newLiveKeys()
	for i := 0; i < k; i++ {
		key := int64(gen.Next()) // 0..n-1
		op := OpInsert
		if everSeen.has(key) {
			// 已出現：90% Query、10% Insert
			if gen.rng.Float64() < 0.90 {
				op = OpQuery
			}
		} else {
			everSeen.add(key)
		}
		bw.op(op, key)
	}
	if err := bw.flush(); err != nil {
		return err
	}
	tracer().Debugf("wrote %d ops over %d keys to %s", k, everSeen.len(), filename)
	return nil
}

// checkPhases 檢查兩階段產生法的參數並回傳第一階段的長度
func checkPhases(n, k int, phase1Ratio, deleteRatio float64) (int, error) {
	phase1Size := int(float64(k) * phase1Ratio)
	if n <= 0 {
		return 0, fmt.Errorf("%w: n=%d", ErrInvalidParams, n)
	}
	if k < n {
		return 0, fmt.Errorf("%w: k (%d) must be >= n (%d) to ensure each key appears at least once", ErrInvalidParams, k, n)
	}
	if phase1Size < n || phase1Size > k {
		return 0, fmt.Errorf("%w: phase1Size (%d) must satisfy n <= phase1Size <= k", ErrInvalidParams, phase1Size)
	}
	if deleteRatio < 0.0 || deleteRatio > 1.0 {
		return 0, fmt.Errorf("%w: deleteRatio (%v) must be between 0.0 and 1.0", ErrInvalidParams, deleteRatio)
	}
	return phase1Size, nil
}

// rankKeys 建立 rank -> key 的隨機對應（不重複）。
// simpleKey 時 key 為 0..n-1 的排列，否則為隨機的 uint32 值。
func rankKeys(r *randv2.Rand, n int, simpleKey bool) []int64 {
	rankToKey := make([]int64, n)
	if simpleKey {
		for i := 0; i < n; i++ {
			rankToKey[i] = int64(i)
		}
		r.Shuffle(len(rankToKey), func(i, j int) { rankToKey[i], rankToKey[j] = rankToKey[j], rankToKey[i] })
		return rankToKey
	}
	used := roaring64.New()
	for i := 0; i < n; i++ {
		genKey := uint64(r.Uint32())
		for used.Contains(genKey) {
			genKey = uint64(r.Uint32())
		}
		used.Add(genKey)
		rankToKey[i] = int64(genKey)
	}
	return rankToKey
}

// writePhased 是均勻與 Zipf 兩種產生法共用的主體：
// 第一階段 phase1Size 筆先覆蓋全部 key，再以 sample 補齊後打亂；
// 第二階段剩餘 k - phase1Size 筆直接以 sample 取 rank。
func writePhased(filename string, r *randv2.Rand, weights []float64, k, phase1Size int,
	deleteRatio float64, simpleKey bool, sample func() int) (*ZipfV2Info, error) {
	n := len(weights)
	rankToKey := rankKeys(r, n, simpleKey)

	dist := make(map[int64]float64, n)
	for rank, key := range rankToKey {
		dist[key] = weights[rank]
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	bw := newBenchWriter(file)
	bw.header(sortedDist(dist))
	bw.opCount(k)

	phase1Keys := make([]int64, phase1Size)
	copy(phase1Keys, rankToKey)
	for i := n; i < phase1Size; i++ {
		phase1Keys[i] = rankToKey[sample()]
	}
	r.Shuffle(len(phase1Keys), func(i, j int) { phase1Keys[i], phase1Keys[j] = phase1Keys[j], phase1Keys[i] })

	live := newLiveKeys()
	for _, key := range phase1Keys {
		bw.op(nextOp(live, key, r, deleteRatio), key)
	}
	for i := phase1Size; i < k; i++ {
		key := rankToKey[sample()]
		bw.op(nextOp(live, key, r, deleteRatio), key)
	}
	if err := bw.flush(); err != nil {
		return nil, err
	}
	tracer().Debugf("wrote %d ops over %d keys to %s (%d live at end)", k, n, filename, live.len())
	return &ZipfV2Info{Dist: dist, Entropy: EntropyFromDist(dist)}, nil
}

// writeBenchFileFromUniform 使用均勻分布產生操作序列並寫入檔案。
// 參數與邏輯與 WriteBenchFileFromZipfV2 相同，但使用均勻分布而非 Zipf 分布。
func writeBenchFileFromUniform(n int, seed uint64, k int, phase1Ratio, deleteRatio float64, filename string, simpleKey bool) (*ZipfV2Info, error) {
	phase1Size, err := checkPhases(n, k, phase1Ratio, deleteRatio)
	if err != nil {
		return nil, err
	}
	r := randv2.New(randv2.NewPCG(seed, 0))
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return writePhased(filename, r, weights, k, phase1Size, deleteRatio, simpleKey, func() int {
		return r.IntN(n)
	})
}

// ZipfWeights 回傳 rank 0..n-1 的 Zipf 理論機率 1/(v+i)^s，已正規化
func ZipfWeights(n int, s, v float64) []float64 {
	weights := make([]float64, n)
	var sumW float64
	for i := 0; i < n; i++ {
		w := 1.0 / math.Pow(v+float64(i), s)
		weights[i] = w
		sumW += w
	}
	for i := 0; i < n; i++ {
		weights[i] /= sumW
	}
	return weights
}

// WriteBenchFileFromZipfV2 使用 math/rand/v2 的 Zipf 分布產生操作序列並寫入檔案。
// 參數：
//   - n: key 數量
//   - s, v: Zipf 參數。當 s = 0 時使用均勻分布；否則需滿足 s > 1、v >= 1
//   - seed: 隨機種子
//   - k: 輸出操作數量（需 >= n，以保證每個 key 至少出現一次）
//   - phase1Ratio: 第一階段佔 k 的比例，第一階段涵蓋所有 key
//   - deleteRatio: 已存在的 key 被選中時轉為刪除的機率
//
// 規則：
//   - key 第一次被選中（或刪除後再被選中）時一定是 Insert
//   - 之後以 deleteRatio 的機率 Delete，其餘 Query
func WriteBenchFileFromZipfV2(n int, s, v float64, seed uint64, k int, phase1Ratio, deleteRatio float64, filename string, simpleKey bool) (*ZipfV2Info, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidParams, n)
	}
	// 特殊情況：s = 0 表示使用均勻分布
	if s == 0.0 {
		return writeBenchFileFromUniform(n, seed, k, phase1Ratio, deleteRatio, filename, simpleKey)
	}
	if s <= 1.0 || v < 1.0 {
		return nil, fmt.Errorf("%w: zipf s=%v must > 1, v=%v must >= 1", ErrInvalidParams, s, v)
	}
	phase1Size, err := checkPhases(n, k, phase1Ratio, deleteRatio)
	if err != nil {
		return nil, err
	}
	r := randv2.New(randv2.NewPCG(seed, 0))
	zipf := randv2.NewZipf(r, s, v, uint64(n-1))
	return writePhased(filename, r, ZipfWeights(n, s, v), k, phase1Size, deleteRatio, simpleKey, func() int {
		return int(zipf.Uint64())
	})
}

func badFile(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %s: %w", ErrBadBenchFile, what, err)
}

// ReadBench 從 r 讀取 SLBENCH1 格式的內容
func ReadBench(r io.Reader) (*BenchFile, error) {
	br := bufio.NewReader(r)
	get := func(v any) error {
		return binary.Read(br, binary.LittleEndian, v)
	}

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, badFile("magic", err)
	}
	if magic != benchMagic {
		return nil, fmt.Errorf("%w: invalid magic %q", ErrBadBenchFile, magic)
	}
	var ver, reserved uint16
	if err := get(&ver); err != nil {
		return nil, badFile("version", err)
	}
	if ver != benchVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadBenchFile, ver)
	}
	if err := get(&reserved); err != nil {
		return nil, badFile("header", err)
	}

	var distCount uint32
	if err := get(&distCount); err != nil {
		return nil, badFile("distribution", err)
	}
	dist := make(map[int64]float64, min(distCount, 1<<20))
	for i := uint32(0); i < distCount; i++ {
		var key int64
		var weight float64
		if err := get(&key); err != nil {
			return nil, badFile("distribution", err)
		}
		if err := get(&weight); err != nil {
			return nil, badFile("distribution", err)
		}
		dist[key] = weight
	}

	var opCount uint64
	if err := get(&opCount); err != nil {
		return nil, badFile("operations", err)
	}
	ops := make([]BenchOp, 0, min(opCount, 1<<20))
	for i := uint64(0); i < opCount; i++ {
		var t uint8
		var key int64
		if err := get(&t); err != nil {
			return nil, badFile("operations", err)
		}
		if OperationType(t) > OpDelete {
			return nil, fmt.Errorf("%w: op %d has unknown type %d", ErrBadBenchFile, i, t)
		}
		if err := get(&key); err != nil {
			return nil, badFile("operations", err)
		}
		ops = append(ops, BenchOp{Type: OperationType(t), Key: key})
	}
	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// ReadBenchFile 讀取 bin 檔案，回傳分布與操作序列。
func ReadBenchFile(filename string) (*BenchFile, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	bf, err := ReadBench(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	tracer().Debugf("read %s: %d keys, %d ops", filename, len(bf.Dist), len(bf.Ops))
	return bf, nil
}

// ToSequenceModel 將 BenchFile 轉為可重播的 SequenceModel
func (bf *BenchFile) ToSequenceModel() *SequenceModel {
	if bf == nil {
		return NewSequenceModelFromOps(nil)
	}
	ops := make([]Operation, len(bf.Ops))
	for i, op := range bf.Ops {
		ops[i] = Operation{Type: op.Type, Key: op.Key}
	}
	return NewSequenceModelFromOps(ops)
}

// Entropy 回傳分布的熵（bit）
func (bf *BenchFile) Entropy() float64 {
	return EntropyFromDist(bf.Dist)
}

// EntropyFromDist 計算分布的熵（單位：bit）。
// dist 的 value 應為已正規化的機率；會自動忽略 <= 0 的值。
func EntropyFromDist(dist map[int64]float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// DistributeToCSV 輸出兩列：依 key 排序的 key 與機率，前兩欄留白
func (info *ZipfV2Info) DistributeToCSV(writer *csv.Writer) error {
	pairs := sortedDist(info.Dist)
	keys := make([]string, 0, len(pairs)+2)
	probs := make([]string, 0, len(pairs)+2)
	keys = append(keys, "", "")
	probs = append(probs, "", "")
	for _, p := range pairs {
		keys = append(keys, fmt.Sprintf("%d", p.key))
		probs = append(probs, fmt.Sprintf("%f", p.weight))
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
