package inproc

import (
	"sync"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/log"
	"github.com/dep2p/go-sptransport/pkg/types"
)

var logger = log.Logger("core/transport/inproc")

const (
	// Name 地址协议名
	Name = "inproc"

	// ID 传输编号
	ID = -1
)

// Transport 进程内传输
type Transport struct {
	cfg config.InprocConfig

	mu         sync.Mutex
	active     bool
	binders    map[string]*binder
	connectors map[string]map[*connector]struct{}
}

var (
	_ transport.Transport   = (*Transport)(nil)
	_ transport.Initializer = (*Transport)(nil)
	_ transport.Terminator  = (*Transport)(nil)
)

// New 创建进程内传输
func New(cfg config.InprocConfig) *Transport {
	return &Transport{
		cfg:        cfg,
		binders:    make(map[string]*binder),
		connectors: make(map[string]map[*connector]struct{}),
	}
}

// Name 实现 transport.Transport
func (t *Transport) Name() string { return Name }

// ID 实现 transport.Transport
func (t *Transport) ID() int { return ID }

// Init 实现 transport.Initializer
func (t *Transport) Init() {
	t.mu.Lock()
	t.active = true
	t.mu.Unlock()
	logger.Debug("进程内传输已初始化")
}

// Term 实现 transport.Terminator
//
// 所有套接字关闭后才会调用，此时目录应为空。
func (t *Transport) Term() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.binders) + len(t.connectors); n > 0 {
		logger.Warn("终止时仍有未停止的进程内端点", "count", n)
	}
	t.binders = make(map[string]*binder)
	t.connectors = make(map[string]map[*connector]struct{})
	t.active = false
	logger.Debug("进程内传输已终止")
}

// ============================================================================
//                              Bind / Connect
// ============================================================================

// Bind 实现 transport.Transport
//
// 同名地址已被绑定时返回 EADDRINUSE。绑定成功后立即与等待中的连接方建立会话。
func (t *Transport) Bind(ep transport.Endpoint) error {
	name, err := parseAddr(ep.Addr())
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.binders[name]; ok {
		return transport.ErrAddrInUse
	}
	b := &binder{t: t, name: name, ep: ep, sessions: make(map[*session]struct{})}
	if err := ep.Setup(b, b); err != nil {
		return err
	}
	t.binders[name] = b
	logger.Debug("进程内端点已绑定", "name", name, "eid", ep.ID())

	for c := range t.connectors[name] {
		if c.sess == nil {
			t.connectLocked(c, b)
		}
	}
	return nil
}

// Connect 实现 transport.Transport
//
// 连接是异步的：没有绑定方时端点保持等待。
func (t *Transport) Connect(ep transport.Endpoint) error {
	name, err := parseAddr(ep.Addr())
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	c := &connector{t: t, name: name, ep: ep}
	if err := ep.Setup(c, c); err != nil {
		return err
	}
	if t.connectors[name] == nil {
		t.connectors[name] = make(map[*connector]struct{})
	}
	t.connectors[name][c] = struct{}{}

	if b, ok := t.binders[name]; ok {
		t.connectLocked(c, b)
	} else {
		logger.Debug("进程内连接等待绑定方", "name", name, "eid", ep.ID())
	}
	return nil
}

// connectLocked 在 c 与 b 之间建立会话，调用方持有 t.mu
func (t *Transport) connectLocked(c *connector, b *binder) {
	if !c.ep.IsPeerEP(b.ep) {
		logger.Debug("进程内端点类型不兼容", "name", c.name,
			"connector", c.ep.SocketType(), "binder", b.ep.SocketType())
		c.ep.SetError(int(transport.ECONNREFUSED))
		c.ep.StatIncrement(types.StatConnectErrors, 1)
		return
	}
	if limit := t.cfg.MaxConnections; limit > 0 && len(b.sessions) >= limit {
		logger.Debug("进程内绑定方会话已满", "name", b.name, "limit", limit)
		c.ep.SetError(int(transport.ECONNREFUSED))
		b.ep.StatIncrement(types.StatAcceptErrors, 1)
		return
	}

	s := newSession(c, b)
	if err := s.start(); err != nil {
		c.ep.SetError(transport.ErrnoOf(err))
		c.ep.StatIncrement(types.StatConnectErrors, 1)
		return
	}
	c.sess = s
	b.sessions[s] = struct{}{}
	c.ep.ClearError()
	c.ep.StatIncrement(types.StatEstablishedConnections, 1)
	b.ep.StatIncrement(types.StatAcceptedConnections, 1)
	logger.Debug("进程内会话已建立", "name", b.name, "connector", c.ep.ID(), "binder", b.ep.ID())
}

// Bound 判断名称是否已被绑定
func (t *Transport) Bound(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.binders[name]
	return ok
}

func parseAddr(addr string) (string, error) {
	_, name, err := transport.SplitAddr(addr)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
