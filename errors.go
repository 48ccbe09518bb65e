package sptransport

import "errors"

// 公共错误定义
var (
	// ErrNotStarted 库未启动
	ErrNotStarted = errors.New("library not started")

	// ErrAlreadyStarted 库已启动
	ErrAlreadyStarted = errors.New("library already started")

	// ErrLibraryClosed 库已关闭
	ErrLibraryClosed = errors.New("library closed")
)
