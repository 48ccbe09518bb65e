package inproc

import (
	"fmt"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

var (
	// ErrEmptyName 地址缺少名称
	ErrEmptyName = fmt.Errorf("inproc address has no name: %w", transport.ErrInvalidAddress)

	// ErrPeerClosed 对端半边已关闭
	ErrPeerClosed = fmt.Errorf("inproc peer closed: %w", transport.ErrConnReset)
)
