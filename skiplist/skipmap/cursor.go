package skipmap

// boundMode 決定 descent 在同一層往右走的條件
type boundMode uint8

const (
	lowerBoundMode boundMode = iota // next.key <  target
	upperBoundMode                  // next.key <= target
)

func (m *Map[K, V]) advance(next handle, key K, mode boundMode) bool {
	if next == end {
		return false
	}
	c := m.cmp(m.nodes.at(next).key, key)
	if mode == upperBoundMode {
		return c <= 0
	}
	return c < 0
}

// seek 從 head 的最高使用層開始往右走，條件不成立時下降一層，直到 level 0。
// updates 不為 nil 時，記錄每一層最後停留的節點（之後需要改寫 forward 的節點）。
// 回傳 level 0 的最終位置以及它後面的候選節點。
func (m *Map[K, V]) seek(key K, mode boundMode, updates []handle) (pred, candidate handle) {
	cur := headSlot
	for i := m.height - 1; i >= 0; i-- {
		for {
			next := m.nodes.at(cur).forward[i]
			if !m.advance(next, key, mode) {
				break
			}
			cur = next
		}
		if updates != nil {
			updates[i] = cur
		}
	}
	return cur, m.nodes.at(cur).forward[0]
}

// find 回傳 key 所在的節點，不存在時回傳 end
func (m *Map[K, V]) find(key K) handle {
	_, c := m.seek(key, lowerBoundMode, nil)
	if c != end && m.cmp(m.nodes.at(c).key, key) == 0 {
		return c
	}
	return end
}
