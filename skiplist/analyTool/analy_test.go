package analyTool

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/Hakuto4838/SkipListMap.git/skiplist"
	"github.com/Hakuto4838/SkipListMap.git/skiplist/skipmap"
	"github.com/fatih/color"
)

// 手動串接的最小 skip list，讓測試可以控制每個節點的高度
type fixedNode struct {
	key  int
	next []*fixedNode
}

func (n *fixedNode) GetKey() int   { return n.key }
func (n *fixedNode) GetValue() int { return n.key }
func (n *fixedNode) GetLevel() int { return len(n.next) - 1 }
func (n *fixedNode) GetNextAt(level int) skiplist.Nodelike[int, int] {
	if level < 0 || level >= len(n.next) || n.next[level] == nil {
		return nil
	}
	return n.next[level]
}

type fixedList struct {
	head   *fixedNode
	height int
	size   int
}

func (l *fixedList) Contains(key int) bool {
	for n := l.head.next[0]; n != nil; n = n.next[0] {
		if n.key == key {
			return true
		}
	}
	return false
}

func (l *fixedList) Get(key int) (int, bool) { return key, l.Contains(key) }
func (l *fixedList) Insert(int, int)         {}
func (l *fixedList) Erase(int) bool          { return false }
func (l *fixedList) Len() int                { return l.size }

func (l *fixedList) GetHead() skiplist.Nodelike[int, int] { return l.head }

func (l *fixedList) GetMaxStats() (int, int) { return l.size, l.height }

// buildFixed 依 heights 建立 key 為 1..n 的 skip list
func buildFixed(heights ...int) *fixedList {
	height := 0
	for _, h := range heights {
		height = max(height, h)
	}
	head := &fixedNode{next: make([]*fixedNode, height)}
	last := make([]*fixedNode, height)
	for i := range last {
		last[i] = head
	}
	for i, h := range heights {
		nd := &fixedNode{key: i + 1, next: make([]*fixedNode, h)}
		for lv := 0; lv < h; lv++ {
			last[lv].next[lv] = nd
			last[lv] = nd
		}
	}
	return &fixedList{head: head, height: height, size: len(heights)}
}

func TestFindStep(t *testing.T) {
	//  level 1:  H -> 2 ------> 4
	//  level 0:  H -> 1 -> 2 -> 3 -> 4
	sl := buildFixed(1, 2, 1, 2)
	tests := []struct {
		key  int
		want int
	}{
		{2, 1}, // level 1 直接到 2
		{4, 2}, // level 1: 2 -> 4
		{1, 2}, // level 1 沒有前進，下降一層後一步
		{3, 3}, // level 1 到 2，下降，再一步
	}
	for _, tt := range tests {
		got, perLevel := FindStep[int, int](sl, tt.key)
		if got != tt.want {
			t.Errorf("FindStep(%d) = %d, want %d (per level %v)", tt.key, got, tt.want, perLevel)
		}
	}
}

func TestAnalyzeStep(t *testing.T) {
	sl := buildFixed(1, 2, 1, 2)
	avg, steps := AnalyzeStep[int, int](sl, map[int]float64{2: 0.5, 3: 0.5, 99: 1})
	if avg != 2 {
		t.Errorf("AnalyzeStep average = %v, want 2", avg)
	}
	if _, ok := steps[99]; ok {
		t.Error("absent key 99 should not appear in the step map")
	}
	if avg, steps := AnalyzeStep[int, int](sl, nil); avg != 0 || steps != nil {
		t.Errorf("AnalyzeStep(nil) = (%v, %v)", avg, steps)
	}
}

func TestCountLevel(t *testing.T) {
	sl := buildFixed(1, 2, 1, 3)
	got := CountLevel[int, int](sl)
	want := []int{4, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("CountLevel = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CountLevel = %v, want %v", got, want)
			break
		}
	}
}

func TestCheckStructDetectsBrokenLinks(t *testing.T) {
	sl := buildFixed(1, 2, 1, 2)
	if err := CheckStruct[int, int](sl); err != nil {
		t.Fatalf("well-formed list: %v", err)
	}
	// 讓 level 1 跳過節點 2
	sl.head.next[1] = sl.head.next[0].next[0].next[0].next[0]
	if err := CheckStruct[int, int](sl); !errors.Is(err, ErrBadStruct) {
		t.Errorf("skipped level-1 node: err = %v, want ErrBadStruct", err)
	}

	sl = buildFixed(1, 1, 1)
	sl.size = 5
	if err := CheckStruct[int, int](sl); !errors.Is(err, ErrBadStruct) {
		t.Errorf("wrong size: err = %v, want ErrBadStruct", err)
	}
}

func TestCheckStructOnSkipMap(t *testing.T) {
	m, err := skipmap.New[int64, float64](16, skipmap.WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 2000; i++ {
		m.Insert(i*7%2003, float64(i))
	}
	for i := int64(0); i < 2000; i += 3 {
		m.Erase(i)
	}
	if err := CheckStruct[int64, float64](m); err != nil {
		t.Fatal(err)
	}
	counts := CountLevel[int64, float64](m)
	if counts[0] != m.Len() {
		t.Errorf("level 0 count = %d, want %d", counts[0], m.Len())
	}
}

func TestFprintSkipList(t *testing.T) {
	color.NoColor = true
	sl := buildFixed(1, 2, 1)
	var buf bytes.Buffer
	FprintSkipList[int, int](&buf, sl, 8, 10)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "level  1") || !strings.Contains(lines[0], "2 ->") {
		t.Errorf("top line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "1 ->") || !strings.Contains(lines[1], "3 ->") {
		t.Errorf("bottom line = %q", lines[1])
	}
}

func TestPrintSkipListToCSV(t *testing.T) {
	sl := buildFixed(1, 2, 1)
	var buf bytes.Buffer
	if err := PrintSkipListToCSV[int, int](sl, 8, 10, csv.NewWriter(&buf)); err != nil {
		t.Fatal(err)
	}
	want := "level 1,,2,\nlevel 0,1,2,3\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	steps := StepMap[int]{3: 4, 1: 2}
	if err := steps.PrintToCSV(csv.NewWriter(&buf)); err != nil {
		t.Fatal(err)
	}
	if buf.String() != ",,2,4\n" {
		t.Errorf("step csv = %q", buf.String())
	}
}
