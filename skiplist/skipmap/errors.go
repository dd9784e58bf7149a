package skipmap

import "errors"

var (
	// ErrInvalidConfiguration 表示建構參數不合法（例如 maxHeight <= 0）
	ErrInvalidConfiguration = errors.New("skipmap: invalid configuration")
	// ErrCorrupted 表示 Check 發現結構不變量被破壞
	ErrCorrupted = errors.New("skipmap: corrupted structure")
)

func assert(condition bool, msg string) {
	if !condition {
		panic("skipmap: " + msg)
	}
}
