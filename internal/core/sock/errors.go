package sock

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

var (
	// ErrClosed 套接字已关闭或正在关闭
	ErrClosed = fmt.Errorf("socket closed: %w", transport.ErrTerminating)

	// ErrInvalidType 未知的套接字类型
	ErrInvalidType = fmt.Errorf("invalid socket type: %w", transport.ErrInvalidOption)

	// ErrUnknownEndpoint 端点编号不存在
	ErrUnknownEndpoint = fmt.Errorf("unknown endpoint: %w", transport.ErrInvalidOption)

	// ErrReadOnlyOption 只读选项
	ErrReadOnlyOption = fmt.Errorf("read-only option: %w", transport.ErrUnsupportedOption)

	// ErrLingerExpired 关闭时部分端点未在 linger 时间内完成停止
	ErrLingerExpired = errors.New("linger expired before all endpoints stopped")
)
