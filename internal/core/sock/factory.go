package sock

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-sptransport/pkg/types"
)

// Factory 按统一依赖创建套接字，并跟踪未关闭的套接字
type Factory struct {
	deps Deps

	mu      sync.Mutex
	sockets map[string]*Socket
}

// NewFactory 创建套接字工厂
func NewFactory(deps Deps) *Factory {
	return &Factory{
		deps:    deps,
		sockets: make(map[string]*Socket),
	}
}

// NewSocket 创建套接字
func (f *Factory) NewSocket(typ types.SocketType) (*Socket, error) {
	s, err := New(typ, f.deps)
	if err != nil {
		return nil, err
	}
	s.onClose = f.forget

	f.mu.Lock()
	f.sockets[s.ID()] = s
	f.mu.Unlock()
	return s, nil
}

// Sockets 返回未关闭的套接字，按编号排序
func (f *Factory) Sockets() []*Socket {
	f.mu.Lock()
	out := make([]*Socket, 0, len(f.sockets))
	for _, s := range f.sockets {
		out = append(out, s)
	}
	f.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Close 关闭所有未关闭的套接字
func (f *Factory) Close(ctx context.Context) error {
	var errs error
	for _, s := range f.Sockets() {
		if err := s.Close(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (f *Factory) forget(s *Socket) {
	f.mu.Lock()
	delete(f.sockets, s.ID())
	f.mu.Unlock()
}
