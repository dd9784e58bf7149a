package datastream

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndReadBenchFileFromZipf(t *testing.T) {
	n := 8
	a := 1.2
	b := 0.0
	seed := int64(42)
	k := 200

	gen := NewZipfDataGenerator(n, a, b, seed)
	if gen == nil {
		t.Fatalf("NewZipfDataGenerator returned nil")
	}

	tmp := t.TempDir()
	file := filepath.Join(tmp, "bench.bin")

	if err := WriteBenchFileFromZipf(gen, k, file); err != nil {
		t.Fatalf("WriteBenchFileFromZipf error: %v", err)
	}

	bf, err := ReadBenchFile(file)
	if err != nil {
		t.Fatalf("ReadBenchFile error: %v", err)
	}

	// 驗證分布 map
	exp := gen.GetKeyMap()
	if len(bf.Dist) != len(exp) {
		t.Fatalf("dist len mismatch: got %d, want %d", len(bf.Dist), len(exp))
	}
	for kexp, vexp := range exp {
		vgot, ok := bf.Dist[kexp]
		if !ok {
			t.Fatalf("missing key in dist: %v", kexp)
		}
		if !floatAlmostEqual(vgot, vexp, 1e-12) {
			t.Fatalf("weight mismatch for key %v: got %v, want %v", kexp, vgot, vexp)
		}
	}

	// 驗證操作序列
	if len(bf.Ops) != k {
		t.Fatalf("ops len mismatch: got %d, want %d", len(bf.Ops), k)
	}
	seen := map[int64]bool{}
	for i, op := range bf.Ops {
		if !seen[op.Key] {
			if op.Type != OpInsert {
				t.Fatalf("op[%d] first occurrence must be Insert, got %v", i, op.Type)
			}
			seen[op.Key] = true
		} else if op.Type != OpQuery && op.Type != OpInsert {
			t.Fatalf("op[%d] must be Query or Insert after seen, got %v", i, op.Type)
		}
	}

	// 驗證 ToSequenceModel
	m := bf.ToSequenceModel()
	count := 0
	for {
		op, ok := m.Next()
		if !ok {
			break
		}
		if op.Key != bf.Ops[count].Key || op.Type != bf.Ops[count].Type {
			t.Fatalf("sequence op %d = %v, want %v", count, op, bf.Ops[count])
		}
		count++
	}
	if count != k {
		t.Fatalf("sequence model length mismatch: got %d, want %d", count, k)
	}
	m.Reset()
	if got := m.NextN(k + 10); len(got) != k {
		t.Fatalf("NextN after Reset returned %d ops, want %d", len(got), k)
	}
}

func floatAlmostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestWriteAndReadBenchFileFromZipfV2(t *testing.T) {
	n := 8
	s := 1.2
	v := 1.0
	var seed uint64 = 42
	k := 200

	tmp := t.TempDir()
	file := filepath.Join(tmp, "bench_v2.bin")

	phase1Ratio := 0.5
	deleteRatio := 0.1
	info, err := WriteBenchFileFromZipfV2(n, s, v, seed, k, phase1Ratio, deleteRatio, file, false)
	if err != nil {
		t.Fatalf("WriteBenchFileFromZipfV2 error: %v", err)
	}

	bf, err := ReadBenchFile(file)
	if err != nil {
		t.Fatalf("ReadBenchFile error: %v", err)
	}

	// 驗證分布 map（Zipf 理論分布，權重集合一致，但 key 由 rank 映射而來）
	if len(bf.Dist) != n {
		t.Fatalf("dist len mismatch: got %d, want %d", len(bf.Dist), n)
	}
	weights := ZipfWeights(n, s, v)
	// 蒐集實際權重，檢查是否可一一對應到理論權重
	used := make([]bool, n)
	for _, got := range bf.Dist {
		matched := false
		for j := 0; j < n; j++ {
			if used[j] {
				continue
			}
			if floatAlmostEqual(got, weights[j], 1e-12) {
				used[j] = true
				matched = true
				break
			}
		}
		if !matched {
			t.Fatalf("unexpected weight in dist: %v", got)
		}
	}
	if !floatAlmostEqual(info.Entropy, bf.Entropy(), 1e-9) {
		t.Errorf("entropy = %v, file entropy = %v", info.Entropy, bf.Entropy())
	}

	// 驗證操作序列數量與覆蓋（每個分布中的 key 至少出現一次）
	if len(bf.Ops) != k {
		t.Fatalf("ops len mismatch: got %d, want %d", len(bf.Ops), k)
	}
	seenKeys := make(map[int64]struct{})
	for _, op := range bf.Ops {
		seenKeys[op.Key] = struct{}{}
	}
	for kx := range bf.Dist {
		if _, ok := seenKeys[kx]; !ok {
			t.Fatalf("key %d did not appear in ops at least once", kx)
		}
	}
}

// 刪除只會作用在目前存在的 key，且不存在的 key 一定先插入
func TestZipfV2OpsFollowLiveKeys(t *testing.T) {
	for _, s := range []float64{0, 1.5} {
		file := filepath.Join(t.TempDir(), "live.bin")
		if _, err := WriteBenchFileFromZipfV2(50, s, 1, 7, 5000, 0.4, 0.3, file, true); err != nil {
			t.Fatalf("s=%v: %v", s, err)
		}
		bf, err := ReadBenchFile(file)
		if err != nil {
			t.Fatal(err)
		}
		live := map[int64]bool{}
		deletes := 0
		for i, op := range bf.Ops {
			switch op.Type {
			case OpInsert:
				if live[op.Key] {
					t.Fatalf("s=%v op %d: insert of live key %d", s, i, op.Key)
				}
				live[op.Key] = true
			case OpDelete:
				if !live[op.Key] {
					t.Fatalf("s=%v op %d: delete of absent key %d", s, i, op.Key)
				}
				live[op.Key] = false
				deletes++
			case OpQuery:
				if !live[op.Key] {
					t.Fatalf("s=%v op %d: query of absent key %d", s, i, op.Key)
				}
			}
		}
		if deletes == 0 {
			t.Errorf("s=%v: no delete ops generated", s)
		}
		// simpleKey 的 key 是 0..n-1
		for key := range bf.Dist {
			if key < 0 || key >= 50 {
				t.Errorf("s=%v: simple key %d out of range", s, key)
			}
		}
	}
}

func TestZipfV2InvalidParams(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.bin")
	tests := []struct {
		name           string
		n, k           int
		s, v           float64
		phase1, delete float64
	}{
		{"zero n", 0, 10, 1.5, 1, 0.5, 0.1},
		{"s too small", 10, 100, 1.0, 1, 0.5, 0.1},
		{"v too small", 10, 100, 1.5, 0.5, 0.5, 0.1},
		{"k below n", 10, 5, 1.5, 1, 1, 0.1},
		{"phase1 below n", 10, 100, 1.5, 1, 0.05, 0.1},
		{"delete ratio", 10, 100, 0, 1, 0.5, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WriteBenchFileFromZipfV2(tt.n, tt.s, tt.v, 1, tt.k, tt.phase1, tt.delete, file, true)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestReadBenchRejectsBadInput(t *testing.T) {
	var good bytes.Buffer
	bf := &BenchFile{
		Dist: map[int64]float64{3: 0.25, -1: 0.75},
		Ops:  []BenchOp{{OpInsert, 3}, {OpQuery, 3}, {OpDelete, 3}},
	}
	if err := WriteBench(&good, bf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadBench(bytes.NewReader(good.Bytes()))
	if err != nil {
		t.Fatalf("ReadBench: %v", err)
	}
	if len(back.Ops) != 3 || back.Ops[2] != (BenchOp{OpDelete, 3}) || back.Dist[-1] != 0.75 {
		t.Fatalf("ReadBench = %+v", back)
	}

	data := good.Bytes()
	badMagic := append([]byte("XXBENCH1"), data[8:]...)
	badType := bytes.Clone(data)
	// 最後一筆操作的 type 位於倒數第 9 個 byte
	badType[len(badType)-9] = 9

	tests := map[string][]byte{
		"empty":     nil,
		"magic":     badMagic,
		"truncated": data[:len(data)-4],
		"op type":   badType,
	}
	for name, in := range tests {
		if _, err := ReadBench(bytes.NewReader(in)); !errors.Is(err, ErrBadBenchFile) {
			t.Errorf("%s: err = %v, want ErrBadBenchFile", name, err)
		}
	}
}

func TestDistributeToCSV(t *testing.T) {
	info := &ZipfV2Info{Dist: map[int64]float64{5: 0.5, 2: 0.25, 9: 0.25}}
	var sb strings.Builder
	if err := info.DistributeToCSV(csv.NewWriter(&sb)); err != nil {
		t.Fatal(err)
	}
	want := ",,2,5,9\n,,0.250000,0.500000,0.250000\n"
	if sb.String() != want {
		t.Errorf("csv = %q, want %q", sb.String(), want)
	}
}

func TestSequenceFileRoundTrip(t *testing.T) {
	gen := NewUniformDataGenerator(16, 3)
	file := filepath.Join(t.TempDir(), "seq.bin")
	if err := gen.WriteSequenceToFile(file, 100); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() != 400 {
		t.Fatalf("file size = %d, want 400", st.Size())
	}
	sr, err := NewSequenceReaderFromFile(file)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for v, ok := sr.Next(); ok; v, ok = sr.Next() {
		if v < 0 || v >= 16 {
			t.Fatalf("value %d out of range", v)
		}
		count++
	}
	if count != 100 {
		t.Errorf("read %d values, want 100", count)
	}
}
