package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Hakuto4838/SkipListMap.git/datastream"
	"github.com/Hakuto4838/SkipListMap.git/skiplist"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/analyTool"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/basic"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/skipmap"
)

func insertAll(sl skiplist.SkipList[int64, float64], kmap map[int64]float64) {
	for k, v := range kmap {
		sl.Insert(k, v)
	}
}

func testOne(name string, sl skiplist.Analyable[int64, float64], kmap map[int64]float64, levels, nodes int) {
	fmt.Printf("=== %s ===\n", name)
	if err := analyTool.CheckStruct(sl); err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	score, _ := analyTool.AnalyzeStep(sl, kmap)
	fmt.Printf("score: %.6f\n", score)
	size, _ := sl.GetMaxStats()
	analyTool.FprintLevelCounts(os.Stdout, analyTool.CountLevel(sl), size)
	fmt.Println()
	analyTool.PrintSkipList(sl, levels, nodes)
	fmt.Println()
}

func main() {
	var n int
	var seed int64
	var maxHeight int
	var levels, nodes int

	flag.IntVar(&n, "n", 900, "number of keys")
	flag.Int64Var(&seed, "seed", 42, "seed for the Zipf generator and both lists")
	flag.IntVar(&maxHeight, "maxHeight", skipmap.DefaultMaxHeight, "maxHeight for skipmap")
	flag.IntVar(&levels, "levels", 8, "levels to print")
	flag.IntVar(&nodes, "nodes", 35, "nodes to print")
	flag.Parse()

	// Zipf distribution for analysis
	gen := datastream.NewZipfDataGenerator(n, 1.07, 1.0, seed)
	kmap := gen.GetKeyMap()

	basicSL := basic.NewBasicSkipList[int64, float64](seed)
	insertAll(basicSL, kmap)
	testOne("basic (p=0.5)", basicSL, kmap, levels, nodes)

	m, err := skipmap.New[int64, float64](maxHeight, skipmap.WithSeed(uint64(seed)))
	if err != nil {
		log.Fatal(err)
	}
	insertAll(m, kmap)
	testOne(fmt.Sprintf("skipmap (p=0.3, maxHeight=%d)", maxHeight), m, kmap, levels, nodes)

	// 以 Zipf 查詢序列刪除熱門 key，再看一次結構
	for _, idx := range gen.GenerateSequence(n / 10) {
		m.Erase(int64(idx))
		basicSL.Erase(int64(idx))
	}
	fmt.Printf("after erasing hot keys: basic %d, skipmap %d entries (height %d)\n",
		basicSL.Len(), m.Len(), m.Height())
	st := m.Stats()
	fmt.Printf("skipmap arena: live %d, free %d, slots %d\n", st.Live, st.Free, st.Slots)
}
