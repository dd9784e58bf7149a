package skipmap

import "fmt"

// Check 驗證結構不變量：
// level 0 的 key 嚴格遞增、每一層恰好是 level 0 中高度足夠的節點所組成的子序列、
// 節點數與 Len 以及 arena 中使用中的 slot 數一致。
//
// 主要給測試使用，成本為 O(n * height)。
func (m *Map[K, V]) Check() error {
	if m.height < 0 || m.height > m.maxHeight {
		return fmt.Errorf("%w: height %d out of range 0..%d", ErrCorrupted, m.height, m.maxHeight)
	}
	head := m.nodes.at(headSlot)
	if len(head.forward) != m.maxHeight {
		return fmt.Errorf("%w: head has %d links, want %d", ErrCorrupted, len(head.forward), m.maxHeight)
	}
	for i := m.height; i < m.maxHeight; i++ {
		if head.forward[i] != end {
			return fmt.Errorf("%w: head links at unused level %d", ErrCorrupted, i)
		}
	}
	last := make([]handle, m.height) // 每一層目前最後一個節點
	count := 0
	prev := headSlot
	for h := head.forward[0]; h != end; h = m.nodes.at(h).forward[0] {
		if count > len(m.nodes.slots) {
			return fmt.Errorf("%w: cycle on level 0", ErrCorrupted)
		}
		nd := m.nodes.at(h)
		if !nd.live {
			return fmt.Errorf("%w: released slot %d still linked", ErrCorrupted, h)
		}
		if len(nd.forward) == 0 || len(nd.forward) > m.height {
			return fmt.Errorf("%w: node %d has level %d, height is %d", ErrCorrupted, h, len(nd.forward), m.height)
		}
		if prev != headSlot && m.cmp(m.nodes.at(prev).key, nd.key) >= 0 {
			return fmt.Errorf("%w: keys not strictly increasing at node %d", ErrCorrupted, h)
		}
		for i := range nd.forward {
			if m.nodes.at(last[i]).forward[i] != h {
				return fmt.Errorf("%w: level %d skips node %d", ErrCorrupted, i, h)
			}
			last[i] = h
		}
		prev = h
		count++
	}
	for i, h := range last {
		if m.nodes.at(h).forward[i] != end {
			return fmt.Errorf("%w: level %d links past its last node", ErrCorrupted, i)
		}
	}
	if count != m.length {
		return fmt.Errorf("%w: %d nodes reachable, length is %d", ErrCorrupted, count, m.length)
	}
	if live := m.nodes.live(); live != m.length {
		return fmt.Errorf("%w: %d live slots, length is %d", ErrCorrupted, live, m.length)
	}
	return nil
}
