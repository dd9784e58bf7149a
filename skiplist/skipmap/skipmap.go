package skipmap

import (
	"cmp"
	"fmt"
	"math/rand/v2"
)

const (
	// DefaultMaxHeight 是建議的最大層數
	DefaultMaxHeight = 32
	// MaxHeightLimit 是 maxHeight 允許的上限
	MaxHeightLimit = 64
)

// Map 是以 skip list 實作的有序 map
type Map[K, V any] struct {
	nodes     *arena[K, V]
	cmp       func(a, b K) int
	levels    levelGenerator
	height    int // 使用中的層數
	maxHeight int
	length    int
	updates   []handle // 寫入操作共用的 descent 暫存
}

type config struct {
	seed     uint64
	capacity int
}

// Option 設定 Map 的建構參數
type Option func(*config)

// WithSeed 固定節點高度抽樣的亂數種子，方便重現結構
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithCapacity 預先配置 n 個節點 slot
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// New 建立以 K 的自然順序排序的 Map。
// maxHeight 必須介於 1 與 MaxHeightLimit 之間，否則回傳 ErrInvalidConfiguration。
func New[K cmp.Ordered, V any](maxHeight int, opts ...Option) (*Map[K, V], error) {
	return NewFunc[K, V](maxHeight, cmp.Compare[K], opts...)
}

// NewFunc 建立以 compare 排序的 Map。compare 必須是全序，
// a < b 時回傳負值，相等回傳 0，a > b 時回傳正值。
func NewFunc[K, V any](maxHeight int, compare func(a, b K) int, opts ...Option) (*Map[K, V], error) {
	if maxHeight <= 0 || maxHeight > MaxHeightLimit {
		return nil, fmt.Errorf("%w: maxHeight %d out of range 1..%d",
			ErrInvalidConfiguration, maxHeight, MaxHeightLimit)
	}
	if compare == nil {
		return nil, fmt.Errorf("%w: comparator is nil", ErrInvalidConfiguration)
	}
	cfg := config{seed: rand.Uint64()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	tracer().Debugf("new map with maxHeight=%d", maxHeight)
	return &Map[K, V]{
		nodes:     newArena[K, V](maxHeight, cfg.capacity),
		cmp:       compare,
		levels:    newLevelGenerator(cfg.seed, maxHeight),
		maxHeight: maxHeight,
		updates:   make([]handle, maxHeight),
	}, nil
}

// Len 回傳 entry 數量
func (m *Map[K, V]) Len() int {
	return m.length
}

// Height 回傳目前使用中的層數
func (m *Map[K, V]) Height() int {
	return m.height
}

// MaxHeight 回傳建構時指定的最大層數
func (m *Map[K, V]) MaxHeight() int {
	return m.maxHeight
}

func (m *Map[K, V]) entry(h handle) (key K, value V, ok bool) {
	if h == end {
		return
	}
	nd := m.nodes.at(h)
	return nd.key, nd.value, true
}

// LowerBound 回傳第一個 key >= 給定 key 的 entry；不存在時 ok 為 false
func (m *Map[K, V]) LowerBound(key K) (K, V, bool) {
	_, c := m.seek(key, lowerBoundMode, nil)
	return m.entry(c)
}

// UpperBound 回傳第一個 key > 給定 key 的 entry；不存在時 ok 為 false
func (m *Map[K, V]) UpperBound(key K) (K, V, bool) {
	_, c := m.seek(key, upperBoundMode, nil)
	return m.entry(c)
}

// Contains 判斷 key 是否存在
func (m *Map[K, V]) Contains(key K) bool {
	return m.find(key) != end
}

// Get 取得 key 對應的 value
func (m *Map[K, V]) Get(key K) (V, bool) {
	h := m.find(key)
	if h == end {
		var zero V
		return zero, false
	}
	return m.nodes.at(h).value, true
}

// First 回傳最小的 entry
func (m *Map[K, V]) First() (K, V, bool) {
	return m.entry(m.nodes.at(headSlot).forward[0])
}

// Last 回傳最大的 entry
func (m *Map[K, V]) Last() (K, V, bool) {
	cur := headSlot
	for i := m.height - 1; i >= 0; i-- {
		for next := m.nodes.at(cur).forward[i]; next != end; next = m.nodes.at(cur).forward[i] {
			cur = next
		}
	}
	if cur == headSlot {
		return m.entry(end)
	}
	return m.entry(cur)
}

// Insert 插入或更新 key 對應的 value。
// key 已存在時直接覆寫 value，不改變結構與 Len。
func (m *Map[K, V]) Insert(key K, value V) {
	updates := m.updates
	_, c := m.seek(key, lowerBoundMode, updates)
	if c != end && m.cmp(m.nodes.at(c).key, key) == 0 {
		m.nodes.at(c).value = value
		return
	}

	level := m.levels.draw()
	if level > m.height {
		// 新出現的層由 head 負責指向新節點
		for i := m.height; i < level; i++ {
			updates[i] = headSlot
		}
		tracer().Debugf("height %d -> %d", m.height, level)
		m.height = level
	}

	h := m.nodes.alloc(key, value, level)
	nd := m.nodes.at(h)
	for i := 0; i < level; i++ {
		prev := m.nodes.at(updates[i])
		nd.forward[i] = prev.forward[i]
		prev.forward[i] = h
	}
	m.length++
}

// Erase 刪除 key，回傳 key 是否存在。
// 節點在它參與的每一層都被解開後才釋放 slot；height 不會因此降低。
func (m *Map[K, V]) Erase(key K) bool {
	updates := m.updates
	_, target := m.seek(key, lowerBoundMode, updates)
	if target == end || m.cmp(m.nodes.at(target).key, key) != 0 {
		return false
	}
	nd := m.nodes.at(target)
	for i := range nd.forward {
		prev := m.nodes.at(updates[i])
		assert(prev.forward[i] == target, "erase: predecessor does not link to target")
		prev.forward[i] = nd.forward[i]
	}
	m.nodes.release(target)
	m.length--
	return true
}

// Clear 一次釋放所有節點，Map 之後仍可繼續使用
func (m *Map[K, V]) Clear() {
	tracer().Debugf("clear %d entries", m.length)
	m.nodes.reset()
	m.height = 0
	m.length = 0
}

// Stats 描述 arena 的使用狀況與各層節點數
type Stats struct {
	Live   int   // 使用中的節點 slot
	Free   int   // free-list 中等待重用的 slot
	Slots  int   // 已配置的 slot 總數（不含 head）
	Levels []int // Levels[i] 為第 i 層上的節點數
}

// Stats 回傳目前的 arena 與層級統計
func (m *Map[K, V]) Stats() Stats {
	st := Stats{
		Live:   m.nodes.live(),
		Free:   len(m.nodes.free),
		Slots:  len(m.nodes.slots) - 1,
		Levels: make([]int, m.height),
	}
	for h := m.nodes.at(headSlot).forward[0]; h != end; h = m.nodes.at(h).forward[0] {
		for i := range m.nodes.at(h).forward {
			st.Levels[i]++
		}
	}
	return st
}
