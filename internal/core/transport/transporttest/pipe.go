package transporttest

import (
	"sync"

	"github.com/dep2p/go-sptransport/internal/core/pipe"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/envelope"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// Pipe 替身管道，实现 transport.PipeOps
//
// parsed 为 false 时入站消息以信封帧交付，由核心拆分。
type Pipe struct {
	ep     *Endpoint
	base   *pipe.Pipe
	parsed bool

	mu         sync.Mutex
	inbox      []*types.Message
	inWaiting  bool
	async      bool
	outWaiting bool
	sendErr    error
	recvErr    error
	sent       []*types.Message
}

var _ transport.PipeOps = (*Pipe)(nil)

func newPipe(ep *Endpoint, parsed bool) *Pipe {
	p := &Pipe{ep: ep, parsed: parsed, inWaiting: true}
	p.base = pipe.New(p, ep.ep)
	return p
}

// Base 返回管道基础实现
func (p *Pipe) Base() *pipe.Pipe { return p.base }

// Deliver 模拟一条入站消息到达
func (p *Pipe) Deliver(header, body []byte) {
	m := &types.Message{Header: header, Body: body}
	if !p.parsed {
		m = &types.Message{Body: envelope.Join(header, body)}
	}
	p.DeliverRaw(m)
}

// DeliverRaw 原样交付消息，可用于构造格式错误的帧
func (p *Pipe) DeliverRaw(m *types.Message) {
	p.mu.Lock()
	p.inbox = append(p.inbox, m)
	resume := p.inWaiting
	p.inWaiting = false
	p.mu.Unlock()

	if resume {
		p.base.Received()
	}
}

// SetAsync 为 true 时 Send 返回 RELEASE，直到 Complete 被调用
func (p *Pipe) SetAsync(on bool) {
	p.mu.Lock()
	p.async = on
	p.mu.Unlock()
}

// Complete 报告挂起的发送已完成
func (p *Pipe) Complete() {
	p.mu.Lock()
	resume := p.outWaiting
	p.outWaiting = false
	p.mu.Unlock()

	if resume {
		p.base.Sent()
	}
}

// FailSend 让后续 Send 返回连接级错误
func (p *Pipe) FailSend(err error) {
	p.mu.Lock()
	p.sendErr = err
	p.mu.Unlock()
}

// FailRecv 让后续 Recv 返回连接级错误
func (p *Pipe) FailRecv(err error) {
	p.mu.Lock()
	p.recvErr = err
	p.mu.Unlock()
}

// Close 停止管道
func (p *Pipe) Close() {
	p.base.Stop()
}

// Sent 返回传输收到的消息副本
func (p *Pipe) Sent() []*types.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.Message(nil), p.sent...)
}

// ============================================================================
//                              transport.PipeOps
// ============================================================================

// Send 实现 transport.PipeOps
func (p *Pipe) Send(msg *types.Message) (transport.Flags, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sendErr != nil {
		return 0, p.sendErr
	}
	p.sent = append(p.sent, msg.Clone())
	if p.async {
		p.outWaiting = true
		return transport.FlagRelease, nil
	}
	return 0, nil
}

// Recv 实现 transport.PipeOps
//
// 取走最后一条排队消息时返回 RELEASE，等下一条到达再恢复。
func (p *Pipe) Recv(msg *types.Message) (transport.Flags, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.recvErr != nil {
		return 0, p.recvErr
	}
	var flags transport.Flags
	if p.parsed {
		flags = transport.FlagParsed
	}
	if len(p.inbox) == 0 {
		p.inWaiting = true
		return flags.With(transport.FlagRelease), nil
	}
	p.inbox[0].MoveTo(msg)
	p.inbox = p.inbox[1:]
	if len(p.inbox) == 0 {
		p.inWaiting = true
		flags = flags.With(transport.FlagRelease)
	}
	return flags, nil
}
