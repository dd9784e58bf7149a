/*
Package skipmap 實作一個有序的 skip list map。

節點不以指標互相連結，而是存放在 arena 的 slot 中，forward 連結是 slot 的
整數 handle。刪除時 slot 回到 free-list，之後的插入會優先重用。
slot 0 固定是 sentinel head；因為沒有任何 forward 會指回 head，
forward 中的 0 同時代表鏈尾。

節點高度以 p = 0.3 的幾何分布抽樣，上限為建構時指定的 maxHeight。
height 只會因插入而成長，刪除後最上層可能留下空層。

Map 不是 thread-safe，呼叫端需要自行序列化所有操作。
插入或刪除會讓仍在使用中的 Iterator 失效。

	m, err := skipmap.New[int, string](skipmap.DefaultMaxHeight)
	if err != nil {
		...
	}
	m.Insert(10, "ten")
	for k, v := range m.All() {
		...
	}
*/
package skipmap

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'skipmap'
func tracer() tracing.Trace {
	return tracing.Select("skipmap")
}
