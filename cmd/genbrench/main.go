package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Hakuto4838/SkipListMap.git/datastream"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// parseScientificNotation 解析科學記號字串（如 "1e5"）為整數
func parseScientificNotation(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative value: %s", s)
	}
	return int(f), nil
}

// formatScientific 將數字格式化為科學記號（用於檔名），如 100000 -> 1e5、25000 -> 2.5e4
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp := len(strconv.Itoa(n)) - 1
	coefficient := float64(n) / math.Pow10(exp)
	if coefficient == math.Trunc(coefficient) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

// formatDecimal 將浮點數格式化為不含小數點的字串（用於檔名），保留兩位小數：
// 1 -> "1"、1.5 -> "1_5"、1.07 -> "1_07"
func formatDecimal(f float64) string {
	val := int(math.Round(f * 100))
	switch {
	case val%100 == 0:
		return strconv.Itoa(val / 100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

// benchName 依參數自動生成輸出檔名前綴
func benchName(p datastream.Profile) string {
	return fmt.Sprintf("bench_n%s_k%s_a%s_b%s_p1r%s_dr%s",
		formatScientific(p.N),
		formatScientific(p.K),
		formatDecimal(p.A),
		formatDecimal(p.B),
		formatDecimal(p.Phase1Ratio),
		formatDecimal(p.DeleteRatio))
}

func main() {
	var out string
	var path string
	var profile string
	var nStr string
	var a float64
	var b float64
	var kStr string
	var seed int64
	var phase1Ratio float64
	var deleteRatio float64
	var nums int
	var eazy bool
	var traceLevel string

	flag.StringVar(&profile, "profile", "", "JSON bench profile (設定後忽略 -n/-k/-a/-b/-seed/-phase1Ratio/-deleteRatio/-eazy)")
	flag.StringVar(&nStr, "n", "0", "number of keys for Zipf generator (支援科學記號，如 1e5)")
	flag.Float64Var(&a, "a", 1.07, "Zipf parameter a (設為 0 時使用均勻分布)")
	flag.Float64Var(&b, "b", 1.0, "Zipf parameter b (當 a > 0 時有效，需 >= 1)")
	flag.StringVar(&kStr, "k", "0", "number of operations to generate (支援科學記號，如 1e6)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators/structures where applicable")
	flag.Float64Var(&phase1Ratio, "phase1Ratio", 0.5, "ratio of phase1 operations")
	flag.Float64Var(&deleteRatio, "deleteRatio", 0.1, "ratio of delete operations")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (留空則自動生成)")
	flag.StringVar(&path, "path", ".", "output directory path (輸出目錄路徑)")
	flag.BoolVar(&eazy, "eazy", false, "是否使用簡單模式 (key 為 0..n-1)")
	flag.StringVar(&traceLevel, "trace", "", "trace level: Debug, Info or Error")
	flag.Parse()

	if traceLevel != "" {
		tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
		tracing.Select("root").SetTraceLevel(tracing.TraceLevelFromString(traceLevel))
	}

	var p datastream.Profile
	if profile != "" {
		var err error
		if p, err = datastream.LoadProfile(profile); err != nil {
			fmt.Printf("讀取 profile 錯誤: %v\n", err)
			os.Exit(1)
		}
	} else {
		n, err := parseScientificNotation(nStr)
		if err != nil {
			fmt.Printf("解析參數 n 錯誤: %v\n", err)
			os.Exit(1)
		}
		k, err := parseScientificNotation(kStr)
		if err != nil {
			fmt.Printf("解析參數 k 錯誤: %v\n", err)
			os.Exit(1)
		}
		p = datastream.Profile{
			N: n, K: k, A: a, B: b,
			Seed:        uint64(seed),
			Phase1Ratio: phase1Ratio,
			DeleteRatio: deleteRatio,
			SimpleKey:   eazy,
		}
		if err := p.Check(); err != nil {
			fmt.Printf("參數錯誤: %v\n", err)
			os.Exit(1)
		}
	}

	if out == "" {
		out = benchName(p)
	}

	// 確保輸出目錄存在
	if path != "." && path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("建立輸出目錄失敗: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("生成參數:\n")
	fmt.Printf("  n (keys): %d\n", p.N)
	fmt.Printf("  k (operations): %d\n", p.K)
	fmt.Printf("  a: %.2f\n", p.A)
	fmt.Printf("  b: %.2f\n", p.B)
	fmt.Printf("  phase1Ratio: %.2f\n", p.Phase1Ratio)
	fmt.Printf("  deleteRatio: %.2f\n", p.DeleteRatio)
	fmt.Printf("  seed: %d\n", p.Seed)
	fmt.Printf("  檔案數量: %d\n", nums)
	fmt.Printf("  輸出目錄: %s\n", path)
	fmt.Printf("  輸出檔名前綴: %s\n\n", out)

	base := p.Seed
	for i := 0; i < nums; i++ {
		filename := out + ".bin"
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)
		fmt.Printf("正在生成 %s...\n", outfile)
		p.Seed = base + uint64(i)
		info, err := p.Write(outfile)
		if err != nil {
			fmt.Printf("錯誤: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  entropy: %.6f\n", info.Entropy)
	}
	fmt.Println("完成!")
}
