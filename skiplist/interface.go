// Package skiplist 定義各種 skip list 實作共用的介面，
// 讓 benchmark 與分析工具可以不依賴具體實作。
package skiplist

// SkipList 是有序 key-value 容器的基本操作集合
type SkipList[K, V any] interface {
	Contains(key K) bool
	Get(key K) (V, bool)
	// Insert 插入新 key，或覆寫既有 key 的 value
	Insert(key K, value V)
	// Erase 刪除 key，回傳 key 是否存在
	Erase(key K) bool
	Len() int
}

// Analyable 提供分析功能的介面
type Analyable[K, V any] interface {
	SkipList[K, V]
	// GetHead 回傳 sentinel head 的節點視圖
	GetHead() Nodelike[K, V]
	// GetMaxStats 獲取節點數與目前使用中的層數
	GetMaxStats() (nodes int, height int)
}

// Nodelike 是節點的唯讀視圖。GetLevel 回傳節點所在的最高層索引，
// GetNextAt 在鏈尾或層級超出範圍時回傳 nil。
type Nodelike[K, V any] interface {
	GetKey() K
	GetValue() V
	GetLevel() int
	GetNextAt(level int) Nodelike[K, V]
}
