package skipmap

import "math"

// handle 是節點在 arena 中的 slot 索引
type handle int32

const (
	headSlot handle = 0
	end      handle = 0 // forward 中的 0 表示鏈尾，head 不會被任何節點指向
)

type node[K, V any] struct {
	key     K
	value   V
	forward []handle // 長度 = 節點參與的層數
	live    bool
}

// arena 擁有所有節點。被釋放的 slot 放進 free-list 供之後的 alloc 重用。
type arena[K, V any] struct {
	slots []node[K, V]
	free  []handle
}

func newArena[K, V any](maxHeight, capacity int) *arena[K, V] {
	a := &arena[K, V]{
		slots: make([]node[K, V], 1, capacity+1),
	}
	a.slots[headSlot].forward = make([]handle, maxHeight)
	a.slots[headSlot].live = true
	return a
}

// at 回傳 slot 的指標；在下一次 alloc 之前有效
func (a *arena[K, V]) at(h handle) *node[K, V] {
	return &a.slots[h]
}

func (a *arena[K, V]) alloc(key K, value V, level int) handle {
	var h handle
	if n := len(a.free); n > 0 {
		h = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		assert(len(a.slots) < math.MaxInt32, "arena exhausted")
		a.slots = append(a.slots, node[K, V]{})
		h = handle(len(a.slots) - 1)
	}
	nd := &a.slots[h]
	assert(!nd.live, "alloc of a live slot")
	nd.key, nd.value, nd.live = key, value, true
	if cap(nd.forward) >= level {
		nd.forward = nd.forward[:level]
		clear(nd.forward)
	} else {
		nd.forward = make([]handle, level)
	}
	return h
}

func (a *arena[K, V]) release(h handle) {
	assert(h != headSlot, "release of head sentinel")
	nd := &a.slots[h]
	assert(nd.live, "double release of a node slot")
	var (
		zk K
		zv V
	)
	nd.key, nd.value, nd.live = zk, zv, false
	nd.forward = nd.forward[:0]
	a.free = append(a.free, h)
}

// reset 一次丟棄整張 slot 表，只保留清空後的 head
func (a *arena[K, V]) reset() {
	head := a.slots[headSlot]
	clear(head.forward)
	a.slots = []node[K, V]{head}
	a.free = nil
}

func (a *arena[K, V]) live() int {
	return len(a.slots) - 1 - len(a.free)
}
