package sock

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/aio"
	"github.com/dep2p/go-sptransport/internal/core/endpoint"
	"github.com/dep2p/go-sptransport/internal/core/eventbus"
	"github.com/dep2p/go-sptransport/internal/core/metrics"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/log"
	"github.com/dep2p/go-sptransport/pkg/types"
)

var logger = log.Logger("core/sock")

// Deps 套接字依赖
type Deps struct {
	// Registry 传输注册表（必需）
	Registry transport.Registry

	// Config 套接字默认选项
	Config config.SocketConfig

	// Clock 驱动 linger 计时与速率窗口，为空时使用系统时钟
	Clock clock.Clock

	// Bus 监控事件总线（可选）
	Bus *eventbus.Bus

	// Collector Prometheus 收集器（可选）
	Collector *metrics.Collector
}

// pipeEntry 套接字侧的管道记录
type pipeEntry struct {
	p    transport.Pipe
	opts types.EndpointOptions
}

// Socket 套接字核心
type Socket struct {
	id        string
	typ       types.SocketType
	reg       transport.Registry
	clk       clock.Clock
	actx      *aio.Context
	stats     *metrics.Stats
	collector *metrics.Collector
	events    *emitters
	onClose   func(*Socket)

	// bindMu 套接字级 bind/connect 临界区
	bindMu sync.Mutex

	mu        sync.Mutex
	opts      socketOptions
	optsets   map[int]transport.OptionSet
	eps       map[int]*endpoint.Endpoint
	nextEID   int
	pipes     map[transport.Pipe]*pipeEntry
	in        prioList
	out       prioList
	inSignal  chan struct{}
	outSignal chan struct{}

	closing   bool
	closingCh chan struct{}
	drained   chan struct{}
	isDrained bool
	closeDone chan struct{}
}

var _ transport.Socket = (*Socket)(nil)

// New 创建套接字并登记为注册表使用者
func New(typ types.SocketType, deps Deps) (*Socket, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, int(typ))
	}
	if deps.Registry == nil {
		return nil, errors.New("socket requires a transport registry")
	}
	if err := deps.Config.Validate(); err != nil {
		return nil, fmt.Errorf("socket config: %w", err)
	}
	if err := deps.Registry.Acquire(); err != nil {
		return nil, err
	}

	ev, err := newEmitters(deps.Bus)
	if err != nil {
		deps.Registry.Release()
		return nil, err
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}

	id := uuid.NewString()
	s := &Socket{
		id:        id,
		typ:       typ,
		reg:       deps.Registry,
		clk:       clk,
		actx:      aio.New("sock-" + id[:8]),
		stats:     metrics.NewStats(clk),
		collector: deps.Collector,
		events:    ev,
		opts:      optionsFromConfig(deps.Config, id),
		optsets:   make(map[int]transport.OptionSet),
		eps:       make(map[int]*endpoint.Endpoint),
		pipes:     make(map[transport.Pipe]*pipeEntry),
		inSignal:  make(chan struct{}),
		outSignal: make(chan struct{}),
		closingCh: make(chan struct{}),
		drained:   make(chan struct{}),
		closeDone: make(chan struct{}),
	}
	if s.collector != nil {
		s.collector.Register(id, typ, s.stats)
	}
	logger.Debug("套接字已创建", "socket", id, "type", typ)
	return s, nil
}

// ============================================================================
//                              访问器
// ============================================================================

// ID 实现 transport.Socket
func (s *Socket) ID() string { return s.id }

// Type 实现 transport.Socket
func (s *Socket) Type() types.SocketType { return s.typ }

// Context 实现 transport.Socket
func (s *Socket) Context() transport.Executor { return s.actx }

// StatIncrement 实现 transport.Socket
func (s *Socket) StatIncrement(name types.StatName, delta int64) {
	s.stats.Add(name, delta)
}

// Stat 读取单个统计项
func (s *Socket) Stat(name types.StatName) int64 {
	return s.stats.Get(name)
}

// Stats 返回统计快照
func (s *Socket) Stats() metrics.Snapshot {
	return s.stats.Snapshot()
}

// EndpointInfo 端点概况
type EndpointInfo struct {
	ID    int
	Addr  string
	State types.EndpointState
	Errno int
}

// Endpoints 返回按编号排序的端点概况
func (s *Socket) Endpoints() []EndpointInfo {
	s.mu.Lock()
	eps := make([]*endpoint.Endpoint, 0, len(s.eps))
	for _, ep := range s.eps {
		eps = append(eps, ep)
	}
	s.mu.Unlock()

	sort.Slice(eps, func(i, j int) bool { return eps[i].ID() < eps[j].ID() })
	out := make([]EndpointInfo, 0, len(eps))
	for _, ep := range eps {
		out = append(out, EndpointInfo{
			ID:    ep.ID(),
			Addr:  ep.Addr(),
			State: ep.State(),
			Errno: ep.LastErrno(),
		})
	}
	return out
}

// PipeCount 返回已接入的管道数
func (s *Socket) PipeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pipes)
}

// ============================================================================
//                              选项
// ============================================================================

// SetOption 设置选项
//
// LevelSocket 为套接字层；其他层级为传输编号，写入该传输的选项集。
// 没有选项集的传输返回 ENOPROTOOPT。
func (s *Socket) SetOption(level types.OptionLevel, id types.OptionID, value []byte) error {
	if level == types.LevelSocket {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closing {
			return ErrClosed
		}
		return s.opts.set(id, value)
	}

	set, err := s.optionSet(level)
	if err != nil {
		return err
	}
	return set.SetOption(id, value)
}

// GetOption 读取选项，返回值的完整长度，buf 较小时截断复制
func (s *Socket) GetOption(level types.OptionLevel, id types.OptionID, buf []byte) (int, error) {
	if level == types.LevelSocket {
		s.mu.Lock()
		v, err := s.opts.get(id, s.typ)
		s.mu.Unlock()
		if err != nil {
			return 0, err
		}
		copy(buf, v)
		return len(v), nil
	}

	set, err := s.optionSet(level)
	if err != nil {
		return 0, err
	}
	return set.GetOption(id, buf)
}

// SetIntOption 设置整数选项
func (s *Socket) SetIntOption(level types.OptionLevel, id types.OptionID, v int) error {
	return s.SetOption(level, id, types.EncodeInt(v))
}

// IntOption 读取整数选项
func (s *Socket) IntOption(level types.OptionLevel, id types.OptionID) (int, error) {
	buf := make([]byte, types.IntOptionSize)
	n, err := s.GetOption(level, id, buf)
	if err != nil {
		return 0, err
	}
	if n != types.IntOptionSize {
		return 0, transport.ErrInvalidOption
	}
	return types.DecodeInt(buf)
}

// SocketOption 实现 transport.Socket
func (s *Socket) SocketOption(level types.OptionLevel, id types.OptionID, buf []byte) (int, error) {
	return s.GetOption(level, id, buf)
}

// EndpointOptions 实现 transport.Socket
func (s *Socket) EndpointOptions() types.EndpointOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.endpointOptions()
}

// optionSet 返回传输的选项集，首次访问时创建
func (s *Socket) optionSet(level types.OptionLevel) (transport.OptionSet, error) {
	t, ok := s.reg.ByID(int(level))
	if !ok {
		return nil, fmt.Errorf("option level %d: %w", level, transport.ErrUnsupportedOption)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return nil, ErrClosed
	}
	if set, ok := s.optsets[int(level)]; ok {
		return set, nil
	}
	p, ok := t.(transport.OptionSetProvider)
	if !ok {
		return nil, fmt.Errorf("transport %s has no options: %w", t.Name(), transport.ErrUnsupportedOption)
	}
	set := p.OptionSet()
	s.optsets[int(level)] = set
	return set, nil
}
