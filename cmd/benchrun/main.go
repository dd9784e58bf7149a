package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/Hakuto4838/SkipListMap.git/datastream"
	"github.com/Hakuto4838/SkipListMap.git/skiplist"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/analyTool"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/basic"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/skipmap"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/olekukonko/tablewriter"
)

var allImpls = []string{"skipmap", "basic"}

func main() {
	// Input: either provide -file, -dir, or provide -out and generation params / -profile
	var file string
	var dir string
	var out string
	var profile string
	var n int
	var a float64
	var b float64
	var k int
	var seed int64
	var phase1Ratio float64
	var deleteRatio float64

	var impls string
	var runs int
	var maxHeight int
	var traceLevel string

	flag.StringVar(&file, "file", "", "existing bench streamfile (SLBENCH1 format)")
	flag.StringVar(&dir, "dir", "", "directory containing bench files to test (will test all .bin files)")
	flag.StringVar(&out, "out", "", "output path to write generated bench streamfile")
	flag.StringVar(&profile, "profile", "", "JSON bench profile used with -out instead of -n/-a/-b/-k")
	flag.IntVar(&n, "n", 0, "number of keys for Zipf generator")
	flag.Float64Var(&a, "a", 1.07, "Zipf parameter a (0 for uniform)")
	flag.Float64Var(&b, "b", 1.0, "Zipf parameter b (>= 1)")
	flag.IntVar(&k, "k", 0, "number of operations to generate")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators/structures where applicable")
	flag.Float64Var(&phase1Ratio, "phase1Ratio", 0.5, "ratio of phase1 operations")
	flag.Float64Var(&deleteRatio, "deleteRatio", 0.1, "ratio of delete operations")

	flag.StringVar(&impls, "impl", "all", "implementations to run: all or comma list (skipmap,basic)")
	flag.IntVar(&runs, "runs", 5, "how many times to repeat each benchmark")
	flag.IntVar(&maxHeight, "maxHeight", skipmap.DefaultMaxHeight, "maxHeight for skipmap")
	flag.StringVar(&traceLevel, "trace", "", "trace level: Debug, Info or Error (empty disables tracing)")
	flag.Parse()

	setupTrace(traceLevel)
	runs = max(runs, 1)

	var benchPaths []string

	// 判斷模式: -dir 優先於 -file
	switch {
	case dir != "":
		files, err := collectBenchFilesFromDir(dir)
		if err != nil {
			log.Fatalf("scan directory %s: %v", dir, err)
		}
		if len(files) == 0 {
			log.Fatalf("no .bin files found in directory: %s", dir)
		}
		benchPaths = files
		fmt.Printf("Found %d bench files in directory: %s\n", len(benchPaths), dir)
	case file != "":
		benchPaths = []string{file}
	case out != "":
		p := datastream.DefaultProfile()
		if profile != "" {
			var err error
			if p, err = datastream.LoadProfile(profile); err != nil {
				log.Fatalf("load profile: %v", err)
			}
			if p.MaxHeight > 0 {
				maxHeight = p.MaxHeight
			}
		} else {
			if n <= 0 || k <= 0 {
				log.Fatalf("invalid -n or -k: n=%d k=%d", n, k)
			}
			p.N, p.K, p.A, p.B = n, k, a, b
			p.Seed = uint64(seed)
			p.Phase1Ratio, p.DeleteRatio = phase1Ratio, deleteRatio
			p.SimpleKey = false
		}
		fmt.Printf("generated bench_file: %s\n", out)
		if _, err := p.Write(out); err != nil {
			log.Fatalf("generate bench file: %v", err)
		}
		benchPaths = []string{out}
	default:
		log.Fatalf("either -file, -dir, or -out with generation params (-n,-a,-b,-k,-seed or -profile) must be provided")
	}

	toRun := parseImpls(impls)
	fmt.Printf("implementations to test: %s\n", strings.Join(toRun, ","))
	fmt.Println(strings.Repeat("=", 80))

	cfg := benchConfig{runs: runs, seed: seed, maxHeight: maxHeight}
	if len(benchPaths) > 1 {
		runBatchBenchmark(benchPaths, toRun, cfg)
	} else {
		runBenchmark(benchPaths[0], toRun, cfg)
	}
}

func setupTrace(level string) {
	if level == "" {
		return
	}
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	tracing.Select("root").SetTraceLevel(tracing.TraceLevelFromString(level))
}

type benchConfig struct {
	runs      int
	seed      int64
	maxHeight int
}

// collectBenchFilesFromDir 收集指定目錄下所有 .bin 檔案
func collectBenchFilesFromDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// 排序檔案名稱以確保順序一致
	sort.Strings(files)
	return files, nil
}

// runBatchBenchmark 對多個 benchmark 檔案執行測試並匯總統計
func runBatchBenchmark(benchPaths []string, toRun []string, cfg benchConfig) {
	fmt.Printf("Testing %d benchmark files...\n\n", len(benchPaths))

	type implStats struct {
		avgMsList []float64
		minMsList []float64
		maxMsList []float64
		opsList   []int
		stepsList []float64
		totalRuns int
	}

	allStats := make(map[string]*implStats, len(toRun))
	for _, impl := range toRun {
		allStats[impl] = &implStats{}
	}

	for idx, benchPath := range benchPaths {
		fmt.Printf("[%d/%d] Testing: %s\n", idx+1, len(benchPaths), filepath.Base(benchPath))

		bf, err := datastream.ReadBenchFile(benchPath)
		if err != nil {
			log.Printf("  ERROR reading bench file: %v\n", err)
			continue
		}
		fmt.Printf("  ops: %d, entropy: %.6f\n", len(bf.Ops), bf.Entropy())

		for _, impl := range toRun {
			fmt.Printf("  - benchmarking %s...\n", impl)
			stats := benchmarkImpl(bf, impl, cfg)

			st := allStats[impl]
			st.avgMsList = append(st.avgMsList, stats.avgMs)
			st.minMsList = append(st.minMsList, stats.minMs)
			st.maxMsList = append(st.maxMsList, stats.maxMs)
			st.opsList = append(st.opsList, len(bf.Ops))
			if !math.IsNaN(stats.avgSteps) {
				st.stepsList = append(st.stepsList, stats.avgSteps)
			}
			st.totalRuns += cfg.runs
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("AGGREGATE STATISTICS (across all benchmark files)")
	fmt.Println(strings.Repeat("=", 80))

	rows := make([][]string, 0, len(toRun))
	for _, impl := range toRun {
		stats := allStats[impl]
		if len(stats.avgMsList) == 0 {
			continue
		}

		// 平均 ops/s 以總操作數除以總時間
		totalOps := 0
		totalSec := 0.0
		for i, ops := range stats.opsList {
			totalOps += ops
			totalSec += stats.avgMsList[i] / 1000.0
		}

		steps := "N/A"
		if len(stats.stepsList) > 0 {
			steps = fmt.Sprintf("%.6f", average(stats.stepsList))
		}

		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", stats.totalRuns),
			fmt.Sprintf("%.3f", average(stats.avgMsList)),
			fmt.Sprintf("%.3f", slices.Min(stats.minMsList)),
			fmt.Sprintf("%.3f", slices.Max(stats.maxMsList)),
			fmt.Sprintf("%.2f", float64(totalOps)/totalSec),
			steps,
		})
	}

	renderTable([]string{"Impl", "Total Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Avg Ops/s", "AvgSteps"}, rows)
}

// runBenchmark 執行單一 benchmark 檔案的測試
func runBenchmark(benchPath string, toRun []string, cfg benchConfig) {
	bf, err := datastream.ReadBenchFile(benchPath)
	if err != nil {
		log.Printf("ERROR reading bench file %s: %v", benchPath, err)
		return
	}

	fmt.Printf("bench_file: %s\n", benchPath)
	fmt.Printf("ops: %d\n", len(bf.Ops))
	fmt.Printf("entropy: %.6f\n", bf.Entropy())

	rows := make([][]string, 0, len(toRun))
	for _, impl := range toRun {
		fmt.Printf("benchmarking %s...\n", impl)
		stats := benchmarkImpl(bf, impl, cfg)
		thr := float64(len(bf.Ops)) / (stats.avgMs / 1000.0)
		steps := "N/A"
		if !math.IsNaN(stats.avgSteps) {
			steps = fmt.Sprintf("%.6f", stats.avgSteps)
		}
		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", cfg.runs),
			fmt.Sprintf("%.3f", stats.avgMs),
			fmt.Sprintf("%.3f", stats.minMs),
			fmt.Sprintf("%.3f", stats.maxMs),
			fmt.Sprintf("%.2f", thr),
			fmt.Sprintf("%d/%d", stats.live, stats.height),
			steps,
		})
	}

	renderTable([]string{"Impl", "Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "Live/Height", "AvgSteps"}, rows)
}

func renderTable(header []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

type benchStats struct {
	avgMs    float64
	minMs    float64
	maxMs    float64
	avgSteps float64 // 取自第一次執行後的結構，NaN 表示無法分析
	live     int
	height   int
}

func benchmarkImpl(bf *datastream.BenchFile, impl string, cfg benchConfig) benchStats {
	durations := make([]float64, 0, cfg.runs)
	stats := benchStats{avgSteps: math.NaN()}
	for i := 0; i < cfg.runs; i++ {
		sl := newImpl(impl, cfg.seed+int64(i), cfg.maxHeight)
		start := time.Now()
		bf.Replay(sl)
		elapsed := time.Since(start)
		durations = append(durations, float64(elapsed.Microseconds())/1000.0)
		if math.IsNaN(stats.avgSteps) {
			if analy, ok := sl.(skiplist.Analyable[int64, float64]); ok {
				stats.avgSteps, _ = analyTool.AnalyzeStep(analy, bf.Dist)
				stats.live, stats.height = analy.GetMaxStats()
			}
		}
	}
	sort.Float64s(durations)
	stats.avgMs = average(durations)
	stats.minMs = durations[0]
	stats.maxMs = durations[len(durations)-1]
	return stats
}

func newImpl(impl string, seed int64, maxHeight int) skiplist.SkipList[int64, float64] {
	switch impl {
	case "skipmap":
		m, err := skipmap.New[int64, float64](maxHeight, skipmap.WithSeed(uint64(seed)))
		if err != nil {
			log.Fatalf("skipmap: %v", err)
		}
		return m
	case "basic":
		return basic.NewBasicSkipList[int64, float64](seed)
	default:
		log.Fatalf("unknown -impl: %s", impl)
		return nil
	}
}

func parseImpls(s string) []string {
	if s == "" || s == "all" {
		return allImpls
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		t := strings.TrimSpace(strings.ToLower(p))
		if t == "" || seen[t] || !slices.Contains(allImpls, t) {
			continue
		}
		out = append(out, t)
		seen[t] = true
	}
	if len(out) == 0 {
		return allImpls
	}
	return out
}
