package pipe

import (
	"fmt"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

var (
	// ErrPipeState 管道状态不允许该操作（EFSM）
	ErrPipeState = fmt.Errorf("invalid pipe state: %w", transport.ErrState)

	// ErrNotStartable Start 只能在 Init 状态调用一次
	ErrNotStartable = fmt.Errorf("pipe already started: %w", ErrPipeState)

	// ErrNotActive 管道未启动、已停止或已失败
	ErrNotActive = fmt.Errorf("pipe is not active: %w", ErrPipeState)

	// ErrReleased 该方向处于 RELEASE 状态，必须等待传输恢复
	ErrReleased = fmt.Errorf("pipe direction released: %w", ErrPipeState)
)
