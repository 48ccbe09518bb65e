package pipe

import (
	"sync"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/log"
	"github.com/dep2p/go-sptransport/pkg/types"
)

var logger = log.Logger("core/pipe")

// Pipe 管道基础实现，由传输嵌入或持有
type Pipe struct {
	ops  transport.PipeOps
	ep   transport.Endpoint // 非拥有引用
	sock transport.Socket
	opts types.EndpointOptions

	mu       sync.Mutex
	state    State
	attached bool
	flow     [2]FlowState
	pending  [2]bool
}

var _ transport.Pipe = (*Pipe)(nil)

// New 创建管道，端点选项在此刻快照
func New(ops transport.PipeOps, ep transport.Endpoint) *Pipe {
	return &Pipe{
		ops:   ops,
		ep:    ep,
		sock:  ep.Socket(),
		opts:  ep.Options(),
		state: StateInit,
	}
}

// ============================================================================
//                              传输侧操作
// ============================================================================

// Start 连接可用时由传输调用，只能调用一次
//
// 出方向立即可写；入方向处于 Released，等传输第一次调用 Received 时才
// 向核心投递 in 事件。套接字可以拒绝管道（如 PAIR 已有对端），此时管道
// 进入 Failed 并返回错误。
func (p *Pipe) Start() error {
	p.mu.Lock()
	if p.state != StateInit {
		p.mu.Unlock()
		return ErrNotStartable
	}
	p.state = StateStarted
	p.flow[dirIn] = FlowReleased
	p.flow[dirOut] = FlowFlowing
	p.mu.Unlock()

	if err := p.sock.PipeAdded(p); err != nil {
		p.mu.Lock()
		p.state = StateFailed
		p.flow[dirIn] = FlowDisabled
		p.flow[dirOut] = FlowDisabled
		p.mu.Unlock()
		logger.Debug("套接字拒绝管道", "socket", p.sock.ID(), "eid", p.ep.ID(), "err", err)
		return err
	}

	p.mu.Lock()
	p.attached = p.state == StateStarted
	attached := p.attached
	p.mu.Unlock()
	if !attached {
		// Start 与 Stop 竞争：Stop 已先行，撤销接入
		p.sock.PipeRemoved(p)
		return ErrNotActive
	}

	p.raise(dirOut)
	return nil
}

// Stop 连接断开时由传输调用，可重复调用
//
// 返回后核心不会再向该管道投递 Send/Recv，排队中的恢复事件也会被丢弃。
func (p *Pipe) Stop() {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.state = StateStopped
	p.flow[dirIn] = FlowDisabled
	p.flow[dirOut] = FlowDisabled
	attached := p.attached
	p.attached = false
	p.mu.Unlock()

	if attached {
		p.sock.PipeRemoved(p)
	}
	logger.Debug("管道已停止", "socket", p.sock.ID(), "eid", p.ep.ID())
}

// Received 传输报告入方向恢复（收到完整消息或有数据可读）
func (p *Pipe) Received() {
	p.resume(dirIn)
}

// Sent 传输报告出方向恢复（当前消息已发出）
func (p *Pipe) Sent() {
	p.resume(dirOut)
}

func (p *Pipe) resume(d direction) {
	p.mu.Lock()
	switch p.flow[d] {
	case FlowBusy:
		// 调用期间同步完成
		p.flow[d] = FlowDone
		p.mu.Unlock()
	case FlowReleased:
		p.flow[d] = FlowFlowing
		p.mu.Unlock()
		p.raise(d)
	default:
		state := p.flow[d]
		p.mu.Unlock()
		logger.Debug("忽略多余的恢复通知", "socket", p.sock.ID(), "dir", d, "flow", state)
	}
}

// raise 经执行上下文向核心投递恢复事件，每个方向最多排队一个
func (p *Pipe) raise(d direction) {
	p.mu.Lock()
	if p.pending[d] {
		p.mu.Unlock()
		return
	}
	p.pending[d] = true
	p.mu.Unlock()

	posted := p.sock.Context().Post(func() {
		p.mu.Lock()
		p.pending[d] = false
		live := p.state == StateStarted
		p.mu.Unlock()
		if !live {
			return
		}
		if d == dirIn {
			p.sock.PipeIn(p)
		} else {
			p.sock.PipeOut(p)
		}
	})
	if !posted {
		p.mu.Lock()
		p.pending[d] = false
		p.mu.Unlock()
	}
}

// Option 读取选项，委托给端点
func (p *Pipe) Option(level types.OptionLevel, id types.OptionID, buf []byte) (int, error) {
	return p.ep.Option(level, id, buf)
}

// IntOption 读取整数选项，委托给端点
func (p *Pipe) IntOption(level types.OptionLevel, id types.OptionID) (int, error) {
	return p.ep.IntOption(level, id)
}

// IsPeer 判断对端类型，委托给端点
func (p *Pipe) IsPeer(t types.SocketType) bool {
	return p.ep.IsPeer(t)
}

// ============================================================================
//                              核心侧操作
// ============================================================================

// Send 实现 transport.Pipe
func (p *Pipe) Send(msg *types.Message) (transport.Flags, error) {
	return p.call(dirOut, msg)
}

// Recv 实现 transport.Pipe
func (p *Pipe) Recv(msg *types.Message) (transport.Flags, error) {
	return p.call(dirIn, msg)
}

func (p *Pipe) call(d direction, msg *types.Message) (transport.Flags, error) {
	p.mu.Lock()
	if p.state != StateStarted {
		p.mu.Unlock()
		return 0, ErrNotActive
	}
	if p.flow[d] != FlowFlowing {
		p.mu.Unlock()
		return 0, ErrReleased
	}
	p.flow[d] = FlowBusy
	p.mu.Unlock()

	var (
		flags transport.Flags
		err   error
	)
	if d == dirOut {
		flags, err = p.ops.Send(msg)
	} else {
		flags, err = p.ops.Recv(msg)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		if p.state == StateStarted {
			p.state = StateFailed
		}
		p.flow[dirIn] = FlowDisabled
		p.flow[dirOut] = FlowDisabled
		logger.Debug("管道连接级错误", "socket", p.sock.ID(), "dir", d, "err", err)
		return 0, err
	}

	switch p.flow[d] {
	case FlowDone:
		// 恢复已报告，RELEASE 失效
		p.flow[d] = FlowFlowing
		return flags.Without(transport.FlagRelease), nil
	case FlowBusy:
		if flags.Has(transport.FlagRelease) {
			p.flow[d] = FlowReleased
		} else {
			p.flow[d] = FlowFlowing
		}
		return flags, nil
	default:
		// 调用期间管道被停止
		return flags.With(transport.FlagRelease), nil
	}
}

// ============================================================================
//                              访问器
// ============================================================================

// Endpoint 实现 transport.Pipe
func (p *Pipe) Endpoint() transport.Endpoint {
	return p.ep
}

// Options 实现 transport.Pipe
func (p *Pipe) Options() types.EndpointOptions {
	return p.opts
}

// State 返回整体状态
func (p *Pipe) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// InState 返回入方向子状态
func (p *Pipe) InState() FlowState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flow[dirIn]
}

// OutState 返回出方向子状态
func (p *Pipe) OutState() FlowState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flow[dirOut]
}
