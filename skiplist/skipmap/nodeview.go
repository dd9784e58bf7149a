package skipmap

import "github.com/Hakuto4838/SkipListMap.git/skiplist"

// nodeView 把 arena 中的 slot 包裝成 skiplist.Nodelike
type nodeView[K, V any] struct {
	m *Map[K, V]
	h handle
}

func (n nodeView[K, V]) GetKey() K {
	return n.m.nodes.at(n.h).key
}

func (n nodeView[K, V]) GetValue() V {
	return n.m.nodes.at(n.h).value
}

func (n nodeView[K, V]) GetLevel() int {
	return len(n.m.nodes.at(n.h).forward) - 1
}

func (n nodeView[K, V]) GetNextAt(level int) skiplist.Nodelike[K, V] {
	fwd := n.m.nodes.at(n.h).forward
	if level < 0 || level >= len(fwd) || fwd[level] == end {
		return nil
	}
	return nodeView[K, V]{m: n.m, h: fwd[level]}
}

// GetHead 實現 skiplist.Analyable
func (m *Map[K, V]) GetHead() skiplist.Nodelike[K, V] {
	return nodeView[K, V]{m: m, h: headSlot}
}

// GetMaxStats 實現 skiplist.Analyable，回傳 (Len, Height)
func (m *Map[K, V]) GetMaxStats() (int, int) {
	return m.length, m.height
}
