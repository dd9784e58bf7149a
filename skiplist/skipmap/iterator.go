package skipmap

import "iter"

// Iterator 沿著 level 0 由小到大走訪 Map。
// 走訪期間若 Map 被插入或刪除，之後的結果沒有定義。
type Iterator[K, V any] struct {
	m    *Map[K, V]
	cur  handle
	done bool
}

// Iterator 回傳一個位於第一個 entry 之前的 iterator
func (m *Map[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{m: m, cur: headSlot}
}

// Next 前進到下一個 entry，走完時回傳 false
func (it *Iterator[K, V]) Next() bool {
	if it.done {
		return false
	}
	it.cur = it.m.nodes.at(it.cur).forward[0]
	if it.cur == end {
		it.done = true
		return false
	}
	return true
}

// Valid 回報 iterator 是否停在某個 entry 上
func (it *Iterator[K, V]) Valid() bool {
	return !it.done && it.cur != headSlot
}

// Key 回傳目前位置的 key；只有在 Valid 時有意義
func (it *Iterator[K, V]) Key() K {
	if !it.Valid() {
		var zero K
		return zero
	}
	return it.m.nodes.at(it.cur).key
}

// Value 回傳目前位置的 value；只有在 Valid 時有意義
func (it *Iterator[K, V]) Value() V {
	if !it.Valid() {
		var zero V
		return zero
	}
	return it.m.nodes.at(it.cur).value
}

// Seek 把 iterator 移到第一個 key >= 給定 key 的 entry，不存在時回傳 false
func (it *Iterator[K, V]) Seek(key K) bool {
	_, c := it.m.seek(key, lowerBoundMode, nil)
	if c == end {
		it.cur, it.done = end, true
		return false
	}
	it.cur, it.done = c, false
	return true
}

// Reset 回到第一個 entry 之前，可以重新走訪
func (it *Iterator[K, V]) Reset() {
	it.cur, it.done = headSlot, false
}

// All 依 key 由小到大回傳所有 entry。起點在開始走訪時才決定。
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return m.ascend(func() handle {
		return m.nodes.at(headSlot).forward[0]
	})
}

// AscendFrom 從第一個 key >= from 的 entry 開始依序回傳
func (m *Map[K, V]) AscendFrom(from K) iter.Seq2[K, V] {
	return m.ascend(func() handle {
		_, c := m.seek(from, lowerBoundMode, nil)
		return c
	})
}

func (m *Map[K, V]) ascend(start func() handle) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for h := start(); h != end; {
			nd := m.nodes.at(h)
			next := nd.forward[0]
			if !yield(nd.key, nd.value) {
				return
			}
			h = next
		}
	}
}

// Keys 依序回傳所有 key
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values 依 key 的順序回傳所有 value
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}
