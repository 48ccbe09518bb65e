// Package transporttest 提供可编排的传输替身
//
// Transport 记录钩子调用并检测并发违例；Endpoint 与 Pipe 让测试显式控制
// 管道创建、消息到达、发送完成与 linger 停止。
package transporttest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-sptransport/internal/core/optset"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// 替身选项集中的选项
const (
	OptFlag  types.OptionID = 1
	OptLabel types.OptionID = 2
)

// Transport 可编排的传输
type Transport struct {
	name string
	id   int

	// HookDelay 每个钩子内停留的时间，用于放大并发窗口
	HookDelay time.Duration

	mu         sync.Mutex
	bindErr    error
	connectErr error
	linger     bool
	skipSetup  bool
	endpoints  []*Endpoint
	inits      int
	terms      int
	sets       int
	setsFreed  int
	binding    map[string]int

	inHook        atomic.Int32
	hookOverlaps  atomic.Int32
	bindOverlaps  atomic.Int32
	optionSetless bool
}

var (
	_ transport.Transport         = (*Transport)(nil)
	_ transport.Initializer       = (*Transport)(nil)
	_ transport.Terminator        = (*Transport)(nil)
	_ transport.OptionSetProvider = (*Transport)(nil)
)

// New 创建传输替身
func New(name string, id int) *Transport {
	return &Transport{
		name:    name,
		id:      id,
		binding: make(map[string]int),
	}
}

// ============================================================================
//                              编排
// ============================================================================

// FailBind 让后续 Bind 返回 err
func (t *Transport) FailBind(err error) {
	t.mu.Lock()
	t.bindErr = err
	t.mu.Unlock()
}

// FailConnect 让后续 Connect 返回 err
func (t *Transport) FailConnect(err error) {
	t.mu.Lock()
	t.connectErr = err
	t.mu.Unlock()
}

// SetLinger 为 true 时端点停止后需要调用 Endpoint.Finish 才完成
func (t *Transport) SetLinger(on bool) {
	t.mu.Lock()
	t.linger = on
	t.mu.Unlock()
}

// SkipSetup 为 true 时 Bind/Connect 登记端点后不调用 Setup 就返回成功
func (t *Transport) SkipSetup(on bool) {
	t.mu.Lock()
	t.skipSetup = on
	t.mu.Unlock()
}

// ============================================================================
//                              transport.Transport
// ============================================================================

// Name 实现 transport.Transport
func (t *Transport) Name() string { return t.name }

// ID 实现 transport.Transport
func (t *Transport) ID() int { return t.id }

// Init 实现 transport.Initializer
func (t *Transport) Init() {
	t.hook(func() { t.inits++ })
}

// Term 实现 transport.Terminator
func (t *Transport) Term() {
	t.hook(func() { t.terms++ })
}

func (t *Transport) hook(count func()) {
	if t.inHook.Add(1) > 1 {
		t.hookOverlaps.Add(1)
	}
	if t.HookDelay > 0 {
		time.Sleep(t.HookDelay)
	}
	t.mu.Lock()
	count()
	t.mu.Unlock()
	t.inHook.Add(-1)
}

// Bind 实现 transport.Transport
func (t *Transport) Bind(ep transport.Endpoint) error {
	return t.attach(ep, true)
}

// Connect 实现 transport.Transport
func (t *Transport) Connect(ep transport.Endpoint) error {
	return t.attach(ep, false)
}

func (t *Transport) attach(ep transport.Endpoint, bound bool) error {
	sockID := ep.Socket().ID()

	t.mu.Lock()
	t.binding[sockID]++
	if t.binding[sockID] > 1 {
		t.bindOverlaps.Add(1)
	}
	err := t.connectErr
	if bound {
		err = t.bindErr
	}
	skip := t.skipSetup
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.binding[sockID]--
		t.mu.Unlock()
	}()

	if t.HookDelay > 0 {
		time.Sleep(t.HookDelay)
	}
	if err != nil {
		return err
	}

	e := &Endpoint{t: t, ep: ep, bound: bound}
	if !skip {
		if err := ep.Setup(e, e); err != nil {
			return err
		}
	}
	t.mu.Lock()
	t.endpoints = append(t.endpoints, e)
	t.mu.Unlock()
	return nil
}

// OptionSet 实现 transport.OptionSetProvider
func (t *Transport) OptionSet() transport.OptionSet {
	t.mu.Lock()
	t.sets++
	t.mu.Unlock()
	return &optionSet{
		Table: optset.New(
			optset.Spec{ID: OptFlag, Name: "flag", Kind: optset.KindInt, Min: 0, Max: 1},
			optset.Spec{ID: OptLabel, Name: "label", Kind: optset.KindBytes, MaxLen: 16},
		),
		t: t,
	}
}

type optionSet struct {
	*optset.Table
	t *Transport
}

func (o *optionSet) Destroy() {
	o.Table.Destroy()
	o.t.mu.Lock()
	o.t.setsFreed++
	o.t.mu.Unlock()
}

// ============================================================================
//                              断言辅助
// ============================================================================

// Inits 返回 Init 调用次数
func (t *Transport) Inits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inits
}

// Terms 返回 Term 调用次数
func (t *Transport) Terms() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terms
}

// HookOverlaps 返回 Init/Term 并发执行的次数
func (t *Transport) HookOverlaps() int {
	return int(t.hookOverlaps.Load())
}

// BindOverlaps 返回同一套接字上 Bind/Connect 并发执行的次数
func (t *Transport) BindOverlaps() int {
	return int(t.bindOverlaps.Load())
}

// OptionSets 返回已创建与已释放的选项集数量
func (t *Transport) OptionSets() (created, destroyed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sets, t.setsFreed
}

// Endpoints 返回所有成功创建的端点
func (t *Transport) Endpoints() []*Endpoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Endpoint(nil), t.endpoints...)
}

// Last 返回最近创建的端点
func (t *Transport) Last() *Endpoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.endpoints) == 0 {
		return nil
	}
	return t.endpoints[len(t.endpoints)-1]
}

func (t *Transport) lingers() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.linger
}
