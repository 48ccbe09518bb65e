package registry

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/log"
)

var logger = log.Logger("core/registry")

// Registry 传输注册表实现
type Registry struct {
	// mu 全局临界区：保护注册表本身以及所有 Init/Term 钩子
	mu sync.Mutex

	ordered []transport.Transport
	byName  map[string]transport.Transport
	byID    map[int]transport.Transport

	users  int
	active bool // 当前处于 Init 与 Term 之间
	closed bool
}

var _ transport.Registry = (*Registry)(nil)

// New 创建注册表并按顺序注册给定的传输
func New(ts ...transport.Transport) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]transport.Transport),
		byID:   make(map[int]transport.Transport),
	}
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register 实现 transport.Registry
//
// 注册表已在使用中时，新传输的 Init 立即在同一临界区内执行。
func (r *Registry) Register(t transport.Transport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if _, ok := r.byName[t.Name()]; ok {
		return fmt.Errorf("%w: %s", transport.ErrTransportExists, t.Name())
	}
	if _, ok := r.byID[t.ID()]; ok {
		return fmt.Errorf("%w: %d", transport.ErrTransportIDExists, t.ID())
	}

	r.ordered = append(r.ordered, t)
	r.byName[t.Name()] = t
	r.byID[t.ID()] = t

	if r.active {
		initTransport(t)
	}
	logger.Debug("传输已注册", "name", t.Name(), "id", t.ID(), "active", r.active)
	return nil
}

// Lookup 实现 transport.Registry
func (r *Registry) Lookup(addr string) (transport.Transport, error) {
	scheme, _, err := transport.SplitAddr(addr)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byName[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", transport.ErrProtocolNotSupported, scheme)
	}
	return t, nil
}

// ByID 实现 transport.Registry
func (r *Registry) ByID(id int) (transport.Transport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	return t, ok
}

// Transports 实现 transport.Registry
func (r *Registry) Transports() []transport.Transport {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]transport.Transport(nil), r.ordered...)
}

// Acquire 实现 transport.Registry
func (r *Registry) Acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.users++
	if r.users == 1 {
		r.initAll()
	}
	return nil
}

// Release 实现 transport.Registry
func (r *Registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.users == 0 {
		logger.Warn("注册表 Release 次数多于 Acquire")
		return
	}
	r.users--
	if r.users == 0 {
		r.termAll()
	}
}

// Users 返回当前使用者数量
func (r *Registry) Users() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users
}

// Close 实现 transport.Registry
//
// 仍有使用者时强制执行 Term。关闭后 Register 与 Acquire 返回 ErrClosed。
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.users > 0 {
		logger.Warn("关闭注册表时仍有使用者，强制终止传输", "users", r.users)
		r.users = 0
		r.termAll()
	}
	return nil
}

// ============================================================================
//                              内部方法（持有 mu）
// ============================================================================

func (r *Registry) initAll() {
	for _, t := range r.ordered {
		initTransport(t)
	}
	r.active = true
	logger.Info("传输已初始化", "count", len(r.ordered))
}

func (r *Registry) termAll() {
	if !r.active {
		return
	}
	for i := len(r.ordered) - 1; i >= 0; i-- {
		if tt, ok := r.ordered[i].(transport.Terminator); ok {
			tt.Term()
		}
	}
	r.active = false
	logger.Info("传输已终止", "count", len(r.ordered))
}

func initTransport(t transport.Transport) {
	if ti, ok := t.(transport.Initializer); ok {
		ti.Init()
	}
}
