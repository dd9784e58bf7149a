package basic

import (
	"cmp"
	"math/rand"

	"github.com/Hakuto4838/SkipListMap.git/skiplist"
)

const (
	maxLevel    = 32
	probability = 0.5
)

type basicNode[K cmp.Ordered, V any] struct {
	key   K
	value V
	next  []*basicNode[K, V]
}

// BasicSkipList 是以指標連結的傳統 skip list，作為 benchmark 的比較基準
type BasicSkipList[K cmp.Ordered, V any] struct {
	head  *basicNode[K, V]
	level int // 使用中的層數
	rand  *rand.Rand
	size  int
}

func NewBasicSkipList[K cmp.Ordered, V any](seed int64) *BasicSkipList[K, V] {
	var zk K
	var zv V
	return &BasicSkipList[K, V]{
		head: newNode(zk, zv, maxLevel),
		rand: rand.New(rand.NewSource(seed)),
	}
}

func newNode[K cmp.Ordered, V any](key K, value V, level int) *basicNode[K, V] {
	return &basicNode[K, V]{
		key:   key,
		value: value,
		next:  make([]*basicNode[K, V], level),
	}
}

func (sl *BasicSkipList[K, V]) find(key K) *basicNode[K, V] {
	cur := sl.head
	for h := sl.level - 1; h >= 0; h-- {
		for cur.next[h] != nil && cur.next[h].key < key {
			cur = cur.next[h]
		}
		if cur.next[h] != nil && cur.next[h].key == key {
			return cur.next[h]
		}
	}
	return nil
}

func (sl *BasicSkipList[K, V]) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && sl.rand.Float64() < probability {
		lvl++
	}
	return lvl
}

// Insert 插入或更新 key 對應的 value
func (sl *BasicSkipList[K, V]) Insert(key K, value V) {
	if cur := sl.find(key); cur != nil {
		cur.value = value
		return
	}
	lvl := sl.randomLevel()
	nd := newNode(key, value, lvl)
	sl.level = max(sl.level, lvl)
	curr := sl.head
	for h := sl.level - 1; h >= 0; h-- {
		for curr.next[h] != nil && curr.next[h].key < key {
			curr = curr.next[h]
		}
		if h < lvl {
			nd.next[h] = curr.next[h]
			curr.next[h] = nd
		}
	}
	sl.size++
}

// Get 取得 key 對應的 value
func (sl *BasicSkipList[K, V]) Get(key K) (V, bool) {
	if cur := sl.find(key); cur != nil {
		return cur.value, true
	}
	var zero V
	return zero, false
}

// Contains 判斷 key 是否存在
func (sl *BasicSkipList[K, V]) Contains(key K) bool {
	return sl.find(key) != nil
}

// Erase 刪除 key，回傳 key 是否存在
func (sl *BasicSkipList[K, V]) Erase(key K) bool {
	found := false
	curr := sl.head
	for h := sl.level - 1; h >= 0; h-- {
		for curr.next[h] != nil && curr.next[h].key < key {
			curr = curr.next[h]
		}
		if curr.next[h] != nil && curr.next[h].key == key {
			curr.next[h] = curr.next[h].next[h]
			found = true
		}
	}
	if found {
		sl.size--
	}
	return found
}

func (sl *BasicSkipList[K, V]) Len() int {
	return sl.size
}

func (sl *BasicSkipList[K, V]) GetHead() skiplist.Nodelike[K, V] {
	return sl.head
}

func (sl *BasicSkipList[K, V]) GetMaxStats() (int, int) {
	return sl.size, sl.level
}

func (nd *basicNode[K, V]) GetKey() K {
	return nd.key
}

func (nd *basicNode[K, V]) GetValue() V {
	return nd.value
}

func (nd *basicNode[K, V]) GetLevel() int {
	return len(nd.next) - 1
}

func (nd *basicNode[K, V]) GetNextAt(level int) skiplist.Nodelike[K, V] {
	if level < 0 || level >= len(nd.next) {
		return nil
	}
	if nd.next[level] == nil {
		return nil
	}
	return nd.next[level]
}
