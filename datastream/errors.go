package datastream

import "errors"

var (
	// ErrBadBenchFile 表示 bench 檔案格式錯誤或內容被截斷
	ErrBadBenchFile = errors.New("datastream: bad bench file")
	// ErrInvalidProfile 表示 bench profile 不符合 schema 或參數互相矛盾
	ErrInvalidProfile = errors.New("datastream: invalid bench profile")
	// ErrInvalidParams 表示產生 bench 檔的參數不合法
	ErrInvalidParams = errors.New("datastream: invalid generator parameters")
)
