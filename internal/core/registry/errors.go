package registry

import (
	"fmt"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// ErrClosed 注册表已关闭
var ErrClosed = fmt.Errorf("%w: %w", transport.ErrRegistryClosed, transport.ErrTerminating)
