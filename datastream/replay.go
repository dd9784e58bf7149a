package datastream

import (
	"github.com/Hakuto4838/SkipListMap.git/skiplist"
)

// ReplayStats 統計一次重播中各種操作的次數與結果
type ReplayStats struct {
	Queries int // Query 次數
	Hits    int // Query 找到 key 的次數
	Inserts int
	Deletes int
	Erased  int // Delete 真正刪掉 key 的次數
}

// Replay 依序把 ops 套用到 sl；Insert 寫入的 value 為 0
func Replay(sl skiplist.SkipList[int64, float64], ops []BenchOp) ReplayStats {
	return replay(sl, ops, nil)
}

// Replay 重播 bench 檔的操作，Insert 寫入的 value 為該 key 在分布中的機率
func (bf *BenchFile) Replay(sl skiplist.SkipList[int64, float64]) ReplayStats {
	return replay(sl, bf.Ops, bf.Dist)
}

func replay(sl skiplist.SkipList[int64, float64], ops []BenchOp, dist map[int64]float64) ReplayStats {
	var st ReplayStats
	for _, op := range ops {
		switch op.Type {
		case OpQuery:
			st.Queries++
			if _, ok := sl.Get(op.Key); ok {
				st.Hits++
			}
		case OpInsert:
			st.Inserts++
			sl.Insert(op.Key, dist[op.Key])
		case OpDelete:
			st.Deletes++
			if sl.Erase(op.Key) {
				st.Erased++
			}
		}
	}
	return st
}
