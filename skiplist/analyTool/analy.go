package analyTool

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/Hakuto4838/SkipListMap.git/skiplist"
	"github.com/fatih/color"
)

// ErrBadStruct 表示 CheckStruct 發現結構錯誤
var ErrBadStruct = errors.New("analyTool: bad skip list structure")

type StepMap[K cmp.Ordered] map[K]int

// FindStep 計算找到指定 key 的總步數和各層步數。
// 水平移動與下降一層都算一步；找到 key 的那一步也算在內。
func FindStep[K cmp.Ordered, V any](sl skiplist.Analyable[K, V], key K) (step int, level []int) {
	cur := sl.GetHead()
	if cur == nil {
		return 0, []int{}
	}
	_, height := sl.GetMaxStats()
	stepsPerLevel := make([]int, height)
	totalSteps := 0

	// 從最高層開始搜尋
	for h := height - 1; h >= 0; h-- {
		levelSteps := 0
		for {
			next := cur.GetNextAt(h)
			if next == nil || next.GetKey() >= key {
				break
			}
			cur = next
			levelSteps++
		}
		if next := cur.GetNextAt(h); next != nil && next.GetKey() == key {
			levelSteps++ // 加上最後一步
			stepsPerLevel[h] = levelSteps
			return totalSteps + levelSteps, stepsPerLevel
		}
		stepsPerLevel[h] = levelSteps
		totalSteps += levelSteps + 1 // 加上向下移動
	}
	// 沒找到，返回搜尋過程中的總步數
	return totalSteps, stepsPerLevel
}

// AnalyzeStep 根據 map 提供的 key 出現機率計算平均搜尋步數。
// 不在 skip list 中的 key 會被略過。
func AnalyzeStep[K cmp.Ordered, V any](sl skiplist.Analyable[K, V], keys map[K]float64) (float64, StepMap[K]) {
	if len(keys) == 0 {
		return 0.0, nil
	}
	step := StepMap[K]{}
	var totalExpectedSteps, totalProbability float64
	for k, p := range keys {
		if !sl.Contains(k) {
			continue
		}
		s, _ := FindStep(sl, k)
		step[k] = s
		totalExpectedSteps += float64(s) * p
		totalProbability += p
	}
	if totalProbability > 0 {
		return totalExpectedSteps / totalProbability, step
	}
	return 0.0, step
}

// CountLevel 計算每一層的節點數量（不含 head）
func CountLevel[K, V any](sl skiplist.Analyable[K, V]) []int {
	_, height := sl.GetMaxStats()
	levelCounts := make([]int, height)
	head := sl.GetHead()
	if head == nil {
		return levelCounts
	}
	for cur := head.GetNextAt(0); cur != nil; cur = cur.GetNextAt(0) {
		// 節點存在於 level 0 到 GetLevel() 的所有層
		for i := 0; i <= cur.GetLevel() && i < height; i++ {
			levelCounts[i]++
		}
	}
	return levelCounts
}

// FprintLevelCounts 印出 CountLevel 的結果
func FprintLevelCounts(w io.Writer, counts []int, nodes int) {
	fmt.Fprintf(w, "層級節點統計 (總節點數: %d, 層數: %d):\n", nodes, len(counts))
	for i := len(counts) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "Level %2d: %d 個節點\n", i, counts[i])
	}
}

// CheckStruct 經由 Nodelike 視圖檢查 skip list 的結構是否正確：
// level 0 嚴格遞增，且每一層都恰好連到下一個高度足夠的節點。
func CheckStruct[K cmp.Ordered, V any](sl skiplist.Analyable[K, V]) error {
	nodes, height := sl.GetMaxStats()
	head := sl.GetHead()
	if head == nil {
		return nil
	}
	last := make([]skiplist.Nodelike[K, V], height)
	for i := range last {
		last[i] = head
	}
	count := 0
	var prev skiplist.Nodelike[K, V]
	for node := head.GetNextAt(0); node != nil; node = node.GetNextAt(0) {
		lv := node.GetLevel()
		if lv >= height {
			return fmt.Errorf("%w: node %v has level %d, height is %d", ErrBadStruct, node.GetKey(), lv, height)
		}
		if prev != nil && prev.GetKey() >= node.GetKey() {
			return fmt.Errorf("%w: %v is not after %v", ErrBadStruct, node.GetKey(), prev.GetKey())
		}
		for i := 0; i <= lv; i++ {
			if last[i].GetNextAt(i) != node {
				return fmt.Errorf("%w: level %d does not link to %v", ErrBadStruct, i, node.GetKey())
			}
			last[i] = node
		}
		prev = node
		count++
	}
	for i, nd := range last {
		if nd.GetNextAt(i) != nil {
			return fmt.Errorf("%w: level %d continues past its last node", ErrBadStruct, i)
		}
	}
	if count != nodes {
		return fmt.Errorf("%w: %d nodes on level 0, size is %d", ErrBadStruct, count, nodes)
	}
	return nil
}

// PrintSkipList 打印 skip list 的結構到 stdout
func PrintSkipList[K, V any](sl skiplist.Analyable[K, V], maxLevel, maxNodes int) {
	FprintSkipList(os.Stdout, sl, maxLevel, maxNodes)
}

// FprintSkipList 打印最多 maxLevel 層、maxNodes 個節點的結構
func FprintSkipList[K, V any](w io.Writer, sl skiplist.Analyable[K, V], maxLevel, maxNodes int) {
	head := sl.GetHead()
	if head == nil {
		fmt.Fprintln(w, "Skip list 為空")
		return
	}
	_, height := sl.GetMaxStats()
	maxLevel = min(maxLevel, height)
	label := color.New(color.FgCyan)
	top := color.New(color.FgYellow, color.Bold)

	output := make([]strings.Builder, maxLevel)
	for i := range output {
		output[i].WriteString(label.Sprintf("level %2d : ", i))
		output[i].WriteString(" H ->")
	}
	count := 0
	for node := head.GetNextAt(0); node != nil && count < maxNodes; node = node.GetNextAt(0) {
		lv := node.GetLevel()
		for i := range output {
			switch {
			case i == lv:
				output[i].WriteString(top.Sprintf("%4v", node.GetKey()) + " ->")
			case i < lv:
				output[i].WriteString(fmt.Sprintf("%4v ->", node.GetKey()))
			default:
				output[i].WriteString("      ->")
			}
		}
		count++
	}
	for i := len(output) - 1; i >= 0; i-- {
		fmt.Fprintln(w, output[i].String())
	}
}

// PrintSkipListToCSV 將 skip list 的結構輸出到 CSV，每一層一列
func PrintSkipListToCSV[K, V any](sl skiplist.Analyable[K, V], maxLevel, maxNodes int, writer *csv.Writer) error {
	head := sl.GetHead()
	if head == nil {
		return nil
	}
	_, height := sl.GetMaxStats()
	maxLevel = min(maxLevel, height)

	var nodes []skiplist.Nodelike[K, V]
	for node := head.GetNextAt(0); node != nil && len(nodes) < maxNodes; node = node.GetNextAt(0) {
		nodes = append(nodes, node)
	}
	for i := maxLevel - 1; i >= 0; i-- {
		row := make([]string, 0, len(nodes)+1)
		row = append(row, fmt.Sprintf("level %d", i))
		for _, node := range nodes {
			if node.GetLevel() >= i {
				row = append(row, fmt.Sprintf("%v", node.GetKey()))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (mp StepMap[K]) sortedKeys() []K {
	keys := make([]K, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Fprint 以 key 排序印出兩列：key 與步數
func (mp StepMap[K]) Fprint(w io.Writer) {
	keys := mp.sortedKeys()
	for _, k := range keys {
		fmt.Fprintf(w, "%2v  ", k)
	}
	fmt.Fprintln(w)
	for _, k := range keys {
		fmt.Fprintf(w, "%2d  ", mp[k])
	}
	fmt.Fprintln(w)
}

// PrintToCSV 以 key 排序輸出一列步數，前兩欄留白以對齊分布表
func (mp StepMap[K]) PrintToCSV(writer *csv.Writer) error {
	keys := mp.sortedKeys()
	steps := make([]string, len(keys)+2)
	for i, k := range keys {
		steps[i+2] = fmt.Sprintf("%d", mp[k])
	}
	if err := writer.Write(steps); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
