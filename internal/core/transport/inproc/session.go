package inproc

import (
	"sync"

	"github.com/dep2p/go-sptransport/internal/core/pipe"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// defaultRcvBuf 读取 RCVBUF 失败时使用的队列上限
const defaultRcvBuf = 128 * 1024

// session 一对互连的半边
type session struct {
	conn   *connector
	bind   *binder
	halves [2]*half

	closeOnce sync.Once
}

func newSession(c *connector, b *binder) *session {
	s := &session{conn: c, bind: b}
	hc := newHalf(c.ep)
	hb := newHalf(b.ep)
	hc.peer, hb.peer = hb, hc
	s.halves = [2]*half{hc, hb}
	return s
}

// start 依次启动两端管道，任一端被套接字拒绝则整体失败
func (s *session) start() error {
	hc, hb := s.halves[0], s.halves[1]
	if err := hc.base.Start(); err != nil {
		hc.base.Stop()
		return err
	}
	if err := hb.base.Start(); err != nil {
		hc.shutdown()
		hb.base.Stop()
		return err
	}
	for _, h := range s.halves {
		h.ep.StatIncrement(types.StatCurrentConnections, 1)
	}
	return nil
}

// close 关闭会话，by 为发起关闭的端点
//
// 另一端计入 DroppedConnections；连接方因绑定方离开而断开时报告 ECONNRESET。
func (s *session) close(by transport.Endpoint) {
	s.closeOnce.Do(func() {
		for _, h := range s.halves {
			h.shutdown()
			h.ep.StatIncrement(types.StatCurrentConnections, -1)
			if h.ep != by {
				h.ep.StatIncrement(types.StatDroppedConnections, 1)
			}
		}
		if by == s.bind.ep {
			s.conn.ep.SetError(int(transport.ECONNRESET))
		}
	})
}

// ============================================================================
//                              half
// ============================================================================

// half 会话的一端，实现 transport.PipeOps
//
// 对端发送的消息直接进入本端队列；队列字节数达到 rcvBuf 时对端收到 RELEASE。
type half struct {
	ep     transport.Endpoint
	base   *pipe.Pipe
	peer   *half
	rcvBuf int

	mu            sync.Mutex
	queue         []*types.Message
	queued        int
	inWaiting     bool
	senderWaiting bool
	closed        bool
}

var _ transport.PipeOps = (*half)(nil)

func newHalf(ep transport.Endpoint) *half {
	rcvBuf, err := ep.IntOption(types.LevelSocket, types.OptRcvBuf)
	if err != nil || rcvBuf <= 0 {
		rcvBuf = defaultRcvBuf
	}
	h := &half{ep: ep, rcvBuf: rcvBuf, inWaiting: true}
	h.base = pipe.New(h, ep)
	return h
}

func (h *half) shutdown() {
	h.mu.Lock()
	h.closed = true
	h.queue = nil
	h.queued = 0
	h.mu.Unlock()
	h.base.Stop()
}

// Send 实现 transport.PipeOps
func (h *half) Send(msg *types.Message) (transport.Flags, error) {
	p := h.peer

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, ErrPeerClosed
	}
	m := &types.Message{}
	msg.MoveTo(m)
	p.queue = append(p.queue, m)
	p.queued += m.Size()
	wake := p.inWaiting
	p.inWaiting = false
	full := p.queued >= p.rcvBuf
	if full {
		p.senderWaiting = true
	}
	p.mu.Unlock()

	if wake {
		p.base.Received()
	}
	if full {
		return transport.FlagRelease, nil
	}
	return 0, nil
}

// Recv 实现 transport.PipeOps
//
// 取走最后一条消息时返回 RELEASE；队列降到 rcvBuf 以下时恢复对端发送。
func (h *half) Recv(msg *types.Message) (transport.Flags, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return 0, transport.ErrConnReset
	}
	flags := transport.FlagParsed
	if len(h.queue) == 0 {
		h.inWaiting = true
		h.mu.Unlock()
		return flags.With(transport.FlagRelease), nil
	}

	m := h.queue[0]
	h.queue[0] = nil
	h.queue = h.queue[1:]
	h.queued -= m.Size()
	m.MoveTo(msg)
	if len(h.queue) == 0 {
		h.inWaiting = true
		flags = flags.With(transport.FlagRelease)
	}
	resume := h.senderWaiting && h.queued < h.rcvBuf
	if resume {
		h.senderWaiting = false
	}
	h.mu.Unlock()

	if resume {
		h.peer.base.Sent()
	}
	return flags, nil
}
