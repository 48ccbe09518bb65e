package endpoint

import (
	"fmt"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

var (
	// ErrAlreadySetup Setup 只允许调用一次
	ErrAlreadySetup = fmt.Errorf("endpoint already set up: %w", transport.ErrState)

	// ErrNotSetup 传输未调用 Setup 就返回成功
	ErrNotSetup = fmt.Errorf("endpoint was not set up by transport: %w", transport.ErrState)

	// ErrNotCreated 只有新建状态的端点可以激活
	ErrNotCreated = fmt.Errorf("endpoint is not in created state: %w", transport.ErrState)

	// ErrNotStopped 停止完成之前不允许销毁
	ErrNotStopped = fmt.Errorf("endpoint not stopped: %w", transport.ErrState)

	// ErrDestroyed 端点已销毁
	ErrDestroyed = fmt.Errorf("endpoint already destroyed: %w", transport.ErrClosed)
)
