package skipmap

import (
	"slices"
	"testing"
)

func TestIteratorRestartable(t *testing.T) {
	m := newTestMap[int, string](t, 8)
	for _, k := range []int{3, 1, 2} {
		m.Insert(k, string(rune('a'+k-1)))
	}
	it := m.Iterator()
	if it.Valid() {
		t.Error("fresh iterator is valid before Next")
	}
	collect := func() (keys []int, values []string) {
		for it.Next() {
			keys = append(keys, it.Key())
			values = append(values, it.Value())
		}
		return
	}
	keys, values := collect()
	if !slices.Equal(keys, []int{1, 2, 3}) || !slices.Equal(values, []string{"a", "b", "c"}) {
		t.Errorf("first pass = %v %v", keys, values)
	}
	if it.Next() || it.Valid() {
		t.Error("exhausted iterator advanced again")
	}
	it.Reset()
	again, _ := collect()
	if !slices.Equal(keys, again) {
		t.Errorf("second pass = %v, want %v", again, keys)
	}
}

func TestIteratorOnEmptyMap(t *testing.T) {
	m := newTestMap[int, int](t, 4)
	it := m.Iterator()
	if it.Next() {
		t.Error("Next() on empty map = true")
	}
	if it.Key() != 0 || it.Value() != 0 {
		t.Error("invalid iterator returned non-zero key or value")
	}
	if it.Seek(0) {
		t.Error("Seek on empty map = true")
	}
}

func TestIteratorSeek(t *testing.T) {
	m := newTestMap[int, int](t, 8)
	for i := 0; i < 100; i += 10 {
		m.Insert(i, i)
	}
	it := m.Iterator()
	if !it.Seek(35) || it.Key() != 40 {
		t.Fatalf("Seek(35) positioned at %d, want 40", it.Key())
	}
	var rest []int
	for it.Next() {
		rest = append(rest, it.Key())
	}
	if !slices.Equal(rest, []int{50, 60, 70, 80, 90}) {
		t.Errorf("after Seek(35): %v", rest)
	}
	if !it.Seek(0) || it.Key() != 0 {
		t.Errorf("Seek(0) positioned at %d, want 0", it.Key())
	}
	if it.Seek(91) || it.Valid() {
		t.Error("Seek past the last key should invalidate the iterator")
	}
}

func TestAllStopsEarly(t *testing.T) {
	m := newTestMap[int, int](t, 8)
	for i := 0; i < 10; i++ {
		m.Insert(i, i*i)
	}
	var seen []int
	for k := range m.All() {
		if k == 4 {
			break
		}
		seen = append(seen, k)
	}
	if !slices.Equal(seen, []int{0, 1, 2, 3}) {
		t.Errorf("All() with break = %v", seen)
	}
	if got := slices.Collect(m.Values()); len(got) != 10 || got[9] != 81 {
		t.Errorf("Values() = %v", got)
	}
}

func TestAscendFrom(t *testing.T) {
	m := newTestMap[int, int](t, 8)
	for i := 1; i <= 5; i++ {
		m.Insert(i*2, i)
	}
	var keys []int
	for k := range m.AscendFrom(5) {
		keys = append(keys, k)
	}
	if !slices.Equal(keys, []int{6, 8, 10}) {
		t.Errorf("AscendFrom(5) = %v", keys)
	}
	for range m.AscendFrom(11) {
		t.Error("AscendFrom past the last key yielded an entry")
	}
}

// 序列在 range 時才找起點，建立後的修改都看得到
func TestSeqResolvesStartWhenRanged(t *testing.T) {
	m := newTestMap[int, int](t, 8)
	m.Insert(5, 5)
	all := m.All()
	from := m.AscendFrom(3)
	m.Insert(1, 1)
	m.Insert(4, 4)
	var keys []int
	for k := range all {
		keys = append(keys, k)
	}
	if !slices.Equal(keys, []int{1, 4, 5}) {
		t.Errorf("All() after insert = %v, want [1 4 5]", keys)
	}
	keys = keys[:0]
	for k := range from {
		keys = append(keys, k)
	}
	if !slices.Equal(keys, []int{4, 5}) {
		t.Errorf("AscendFrom(3) after insert = %v, want [4 5]", keys)
	}

	m.Erase(1)
	m.Erase(4)
	keys = keys[:0]
	for k := range all {
		keys = append(keys, k)
	}
	if !slices.Equal(keys, []int{5}) {
		t.Errorf("All() after erasing the first entries = %v, want [5]", keys)
	}
	m.Erase(5)
	for k := range all {
		t.Errorf("All() on emptied map yielded %d", k)
	}
	for k := range from {
		t.Errorf("AscendFrom(3) on emptied map yielded %d", k)
	}
}
