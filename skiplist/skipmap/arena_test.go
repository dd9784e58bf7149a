package skipmap

import (
	"testing"
)

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func TestArenaReleasePanics(t *testing.T) {
	a := newArena[int, int](4, 0)
	h := a.alloc(1, 1, 2)
	a.release(h)
	expectPanic(t, "double release", func() { a.release(h) })
	expectPanic(t, "release of head", func() { a.release(headSlot) })
}

func TestArenaReusesFreeSlots(t *testing.T) {
	a := newArena[string, *int](4, 0)
	v := 7
	h1 := a.alloc("a", &v, 3)
	h2 := a.alloc("b", &v, 1)
	a.release(h1)
	if nd := a.at(h1); nd.key != "" || nd.value != nil || len(nd.forward) != 0 {
		t.Errorf("released slot not cleared: %+v", *nd)
	}
	h3 := a.alloc("c", nil, 2)
	if h3 != h1 {
		t.Errorf("alloc returned slot %d, want reused slot %d", h3, h1)
	}
	if got := a.at(h3).forward; len(got) != 2 || got[0] != end || got[1] != end {
		t.Errorf("reused slot forward = %v, want two empty links", got)
	}
	if h2 == h3 {
		t.Errorf("alloc handed out live slot %d twice", h2)
	}
	if a.live() != 2 {
		t.Errorf("live = %d, want 2", a.live())
	}
}

func TestEraseReleasesEachNodeOnce(t *testing.T) {
	m := newTestMap[int, int](t, 16)
	const n = 1000
	for i := 0; i < n; i++ {
		m.Insert(i, i)
	}
	st := m.Stats()
	if st.Live != n || st.Free != 0 || st.Slots != n {
		t.Fatalf("after inserts: %+v", st)
	}
	for i := 0; i < n; i += 2 {
		m.Erase(i)
	}
	st = m.Stats()
	if st.Live != n/2 || st.Free != n/2 || st.Slots != n {
		t.Fatalf("after erasing half: live=%d free=%d slots=%d", st.Live, st.Free, st.Slots)
	}
	for i := 1; i < n; i += 2 {
		m.Erase(i)
	}
	if st = m.Stats(); st.Live != 0 || st.Free != n {
		t.Fatalf("after erasing all: live=%d free=%d", st.Live, st.Free)
	}
	// 重新插入只會重用 free-list，不會再長出新的 slot
	for i := 0; i < n; i++ {
		m.Insert(-i, i)
	}
	if st = m.Stats(); st.Slots != n || st.Free != 0 || st.Live != n {
		t.Errorf("after reinserting: live=%d free=%d slots=%d", st.Live, st.Free, st.Slots)
	}
	if err := m.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestClearDropsAllNodes(t *testing.T) {
	m := newTestMap[int, string](t, 8)
	for i := 0; i < 300; i++ {
		m.Insert(i, "x")
	}
	m.Erase(10)
	m.Clear()
	if m.Len() != 0 || m.Height() != 0 {
		t.Errorf("after Clear: len=%d height=%d", m.Len(), m.Height())
	}
	if st := m.Stats(); st.Slots != 0 || st.Free != 0 || st.Live != 0 {
		t.Errorf("after Clear: %+v", st)
	}
	if _, _, ok := m.First(); ok {
		t.Error("First() found an entry after Clear")
	}
	if err := m.Check(); err != nil {
		t.Fatal(err)
	}
	m.Insert(3, "three")
	if v, ok := m.Get(3); !ok || v != "three" {
		t.Errorf("Get(3) after Clear = (%q, %v)", v, ok)
	}
	if err := m.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestStatsLevels(t *testing.T) {
	m := newTestMap[int, int](t, 8)
	for i := 0; i < 500; i++ {
		m.Insert(i, i)
	}
	st := m.Stats()
	if len(st.Levels) != m.Height() {
		t.Fatalf("len(Levels) = %d, want %d", len(st.Levels), m.Height())
	}
	if st.Levels[0] != 500 {
		t.Errorf("Levels[0] = %d, want 500", st.Levels[0])
	}
	for i := 1; i < len(st.Levels); i++ {
		if st.Levels[i] > st.Levels[i-1] {
			t.Errorf("level %d has %d nodes, more than level %d (%d)", i, st.Levels[i], i-1, st.Levels[i-1])
		}
	}
	t.Logf("levels: %v", st.Levels)
}
