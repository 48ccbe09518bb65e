// Package endpoint 实现端点生命周期状态机
//
// 每次 bind/connect 创建一个端点，端点持有唯一且不可变的地址。
// 状态迁移：
//
//	Created ──Activate──▶ Active ──Stop──▶ Stopping ──Stopped──▶ Stopped ──Destroy──▶ Destroyed
//	   └───────────────────Stop──────────────────────────────────────┘
//
// 无论 Stop 被调用多少次，停止完成通知只投递一次；Destroy 只能在停止
// 完成之后调用一次。
package endpoint

import (
	"sync"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/log"
	"github.com/dep2p/go-sptransport/pkg/types"
)

var logger = log.Logger("core/endpoint")

// Endpoint 端点
type Endpoint struct {
	id   int
	addr string
	sock transport.Socket // 非拥有引用
	opts types.EndpointOptions

	mu        sync.Mutex
	state     types.EndpointState
	ops       transport.EndpointOps
	private   any
	setup     bool
	lastErrno int

	done chan struct{}
}

var _ transport.Endpoint = (*Endpoint)(nil)

// New 创建端点，端点级选项从套接字快照
func New(sock transport.Socket, id int, addr string) *Endpoint {
	return &Endpoint{
		id:    id,
		addr:  addr,
		sock:  sock,
		opts:  sock.EndpointOptions(),
		state: types.EndpointCreated,
		done:  make(chan struct{}),
	}
}

// ============================================================================
//                              核心侧操作
// ============================================================================

// Activate bind/connect 成功后由核心调用
func (e *Endpoint) Activate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != types.EndpointCreated {
		return ErrNotCreated
	}
	if !e.setup {
		return ErrNotSetup
	}
	e.state = types.EndpointActive
	logger.Debug("端点已激活", "socket", e.sock.ID(), "eid", e.id, "addr", e.addr)
	return nil
}

// Stop 请求停止端点
//
// 异步：传输可以继续 linger，完成后调用 Stopped。重复调用不产生额外通知。
func (e *Endpoint) Stop() {
	e.mu.Lock()
	switch e.state {
	case types.EndpointCreated:
		// 未激活的端点没有传输侧资源需要 linger
		e.state = types.EndpointStopped
		e.mu.Unlock()
		e.notifyStopped()
	case types.EndpointActive:
		e.state = types.EndpointStopping
		ops := e.ops
		e.mu.Unlock()
		logger.Debug("端点停止中", "socket", e.sock.ID(), "eid", e.id)
		// 钩子在锁外调用，传输可以在 Stop 内同步调用 Stopped
		ops.Stop()
	default:
		e.mu.Unlock()
	}
}

// Destroy 释放端点，只能在停止完成后调用一次
func (e *Endpoint) Destroy() error {
	e.mu.Lock()
	switch e.state {
	case types.EndpointStopped:
	case types.EndpointDestroyed:
		e.mu.Unlock()
		return ErrDestroyed
	default:
		e.mu.Unlock()
		return ErrNotStopped
	}
	e.state = types.EndpointDestroyed
	ops := e.ops
	e.mu.Unlock()

	if ops != nil {
		ops.Destroy()
	}
	logger.Debug("端点已销毁", "socket", e.sock.ID(), "eid", e.id)
	return nil
}

// State 返回当前状态
func (e *Endpoint) State() types.EndpointState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Done 停止完成时关闭
func (e *Endpoint) Done() <-chan struct{} {
	return e.done
}

// LastErrno 返回最近一次上报的错误码，0 表示无错误
func (e *Endpoint) LastErrno() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErrno
}

// ============================================================================
//                              传输侧操作
// ============================================================================

// ID 实现 transport.Endpoint
func (e *Endpoint) ID() int {
	return e.id
}

// Setup 实现 transport.Endpoint
func (e *Endpoint) Setup(ops transport.EndpointOps, private any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.setup {
		return ErrAlreadySetup
	}
	e.ops = ops
	e.private = private
	e.setup = true
	return nil
}

// Private 实现 transport.Endpoint
func (e *Endpoint) Private() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.private
}

// Stopped 实现 transport.Endpoint
func (e *Endpoint) Stopped() {
	e.mu.Lock()
	if e.state != types.EndpointStopping {
		state := e.state
		e.mu.Unlock()
		logger.Debug("忽略多余的停止完成通知", "socket", e.sock.ID(), "eid", e.id, "state", state)
		return
	}
	e.state = types.EndpointStopped
	e.mu.Unlock()
	e.notifyStopped()
}

// notifyStopped 只会被调用一次：两个调用点都由状态迁移保护
func (e *Endpoint) notifyStopped() {
	close(e.done)
	logger.Debug("端点已停止", "socket", e.sock.ID(), "eid", e.id)
	if !e.sock.Context().Post(func() { e.sock.EndpointStopped(e) }) {
		// 上下文已退出，直接通知
		e.sock.EndpointStopped(e)
	}
}

// Context 实现 transport.Endpoint
func (e *Endpoint) Context() transport.Executor {
	return e.sock.Context()
}

// Addr 实现 transport.Endpoint
func (e *Endpoint) Addr() string {
	return e.addr
}

// Socket 实现 transport.Endpoint
func (e *Endpoint) Socket() transport.Socket {
	return e.sock
}

// SocketType 实现 transport.Endpoint
func (e *Endpoint) SocketType() types.SocketType {
	return e.sock.Type()
}

// Options 实现 transport.Endpoint
func (e *Endpoint) Options() types.EndpointOptions {
	return e.opts
}

// Option 实现 transport.Endpoint
func (e *Endpoint) Option(level types.OptionLevel, id types.OptionID, buf []byte) (int, error) {
	if level == types.LevelSocket {
		if v, ok := e.opts.Get(id); ok {
			return copy(buf, types.EncodeInt(v)), nil
		}
	}
	return e.sock.SocketOption(level, id, buf)
}

// IntOption 实现 transport.Endpoint
func (e *Endpoint) IntOption(level types.OptionLevel, id types.OptionID) (int, error) {
	buf := make([]byte, types.IntOptionSize)
	n, err := e.Option(level, id, buf)
	if err != nil {
		return 0, err
	}
	if n != types.IntOptionSize {
		return 0, transport.ErrInvalidOption
	}
	return types.DecodeInt(buf)
}

// IsPeer 实现 transport.Endpoint
func (e *Endpoint) IsPeer(t types.SocketType) bool {
	return e.sock.Type().IsPeer(t)
}

// IsPeerEP 实现 transport.Endpoint
func (e *Endpoint) IsPeerEP(other transport.Endpoint) bool {
	return e.IsPeer(other.SocketType()) && other.IsPeer(e.SocketType())
}

// SetError 实现 transport.Endpoint
//
// 相同错误码重复上报会被合并；从无错误到有错误时 CurrentEpErrors 加一。
func (e *Endpoint) SetError(errno int) {
	if errno == 0 {
		e.ClearError()
		return
	}
	e.mu.Lock()
	if e.lastErrno == errno {
		e.mu.Unlock()
		return
	}
	first := e.lastErrno == 0
	e.lastErrno = errno
	e.mu.Unlock()

	if first {
		e.sock.StatIncrement(types.StatCurrentEpErrors, 1)
	}
	e.sock.ReportError(e, errno)
}

// ClearError 实现 transport.Endpoint
func (e *Endpoint) ClearError() {
	e.mu.Lock()
	if e.lastErrno == 0 {
		e.mu.Unlock()
		return
	}
	e.lastErrno = 0
	e.mu.Unlock()

	e.sock.StatIncrement(types.StatCurrentEpErrors, -1)
	e.sock.ReportError(e, 0)
}

// StatIncrement 实现 transport.Endpoint
func (e *Endpoint) StatIncrement(name types.StatName, delta int64) {
	e.sock.StatIncrement(name, delta)
}
