package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Hakuto4838/SkipListMap.git/datastream"
	"github.com/Hakuto4838/SkipListMap.git/saalgo"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/skipmap"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/olekukonko/tablewriter"
)

func main() {
	var benchPath string
	var benchDir string
	var start int
	var lambda float64
	var seed int64
	var maxIter int
	var outputCSV string
	var traceLevel string

	flag.StringVar(&benchPath, "bench", "", "單一 benchmark 檔案路徑")
	flag.StringVar(&benchDir, "benchdir", "", "包含多個 benchmark 檔案的目錄 (使用所有 .bin 檔案)")
	flag.IntVar(&start, "start", skipmap.DefaultMaxHeight, "起始 maxHeight")
	flag.Float64Var(&lambda, "lambda", 0.5, "每個節點 forward 連結數的成本權重")
	flag.Int64Var(&seed, "seed", 42, "退火與 skipmap 層級抽樣的亂數種子")
	flag.IntVar(&maxIter, "iter", 300, "最大退火迭代次數")
	flag.StringVar(&outputCSV, "csv", "", "輸出 CSV 檔案路徑（選填，記錄每個評估過的 maxHeight）")
	flag.StringVar(&traceLevel, "trace", "", "trace level: Debug, Info or Error")
	flag.Parse()

	if traceLevel != "" {
		tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
		tracing.Select("root").SetTraceLevel(tracing.TraceLevelFromString(traceLevel))
	}
	if start < 1 || start > skipmap.MaxHeightLimit {
		log.Fatalf("-start 必須介於 1 與 %d 之間", skipmap.MaxHeightLimit)
	}

	var benchFiles []string
	switch {
	case benchDir != "":
		files, err := filepath.Glob(filepath.Join(benchDir, "*.bin"))
		if err != nil {
			log.Fatalf("掃描目錄失敗: %v", err)
		}
		if len(files) == 0 {
			log.Fatalf("目錄中找不到 .bin 檔案: %s", benchDir)
		}
		benchFiles = files
	case benchPath != "":
		benchFiles = []string{benchPath}
	default:
		log.Fatal("請提供 -bench 或 -benchdir 參數")
	}

	fmt.Printf("=== skipmap maxHeight 退火搜尋 ===\n\n")
	benches := make([]*datastream.BenchFile, 0, len(benchFiles))
	totalOps := 0
	for _, fpath := range benchFiles {
		bf, err := datastream.ReadBenchFile(fpath)
		if err != nil {
			log.Fatalf("讀取 benchmark 檔案失敗 %s: %v", fpath, err)
		}
		benches = append(benches, bf)
		totalOps += len(bf.Ops)
		fmt.Printf("  - %s: %d 操作, %d keys\n", filepath.Base(fpath), len(bf.Ops), len(bf.Dist))
	}
	fmt.Printf("\n總計: %d 檔案, %d 操作\n\n", len(benches), totalOps)

	e := newEvaluator(benches, uint64(seed), lambda)
	cfg := &saalgo.SAConfig{
		InitialTemp:      2.0,
		FinalTemp:        0.001,
		CoolingRate:      0.9,
		Iterations:       10,
		MaxIterations:    maxIter,
		RandomSeed:       seed,
		ProgressInterval: 50,
		ProgressCallback: func(it, limit int, temp, best, cur float64) {
			fmt.Printf("[%4d/%d] T=%.4f best=%.4f current=%.4f\n", it, limit, temp, best, cur)
		},
	}

	startTime := time.Now()
	best := tune(e, start, cfg)
	elapsed := time.Since(startTime)
	initial := e.eval(start)

	rows := make([][]string, 0)
	for _, c := range e.evaluated() {
		mark := ""
		if c.height == best.height {
			mark = "✓"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.height),
			fmt.Sprintf("%.4f", c.steps),
			fmt.Sprintf("%.4f", c.links),
			fmt.Sprintf("%.4f", c.cost),
			mark,
		})
	}
	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"maxHeight", "AvgSteps", "Links/Node", "Cost", "Best"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	fmt.Printf("\n=== 搜索完成 (%.1f 秒, 評估 %d 個 maxHeight) ===\n", elapsed.Seconds(), len(rows))
	fmt.Printf("最佳 maxHeight = %d (cost %.4f)\n", best.height, best.cost)
	if initial.cost > 0 {
		fmt.Printf("相對起點 %d 的改善: %.2f%%\n", start, (initial.cost-best.cost)/initial.cost*100.0)
	}

	if outputCSV != "" {
		if err := writeCSV(outputCSV, e.evaluated()); err != nil {
			log.Fatalf("寫入 CSV 失敗: %v", err)
		}
		fmt.Printf("CSV 結果已保存至: %s\n", outputCSV)
	}
}

func writeCSV(path string, costs []heightCost) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"maxHeight", "avg_steps", "links_per_node", "cost"})
	for _, c := range costs {
		w.Write([]string{
			fmt.Sprintf("%d", c.height),
			fmt.Sprintf("%.6f", c.steps),
			fmt.Sprintf("%.6f", c.links),
			fmt.Sprintf("%.6f", c.cost),
		})
	}
	w.Flush()
	return w.Error()
}
