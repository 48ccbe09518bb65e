package sock

import (
	"context"
	"errors"
	"fmt"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/aio"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/envelope"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// ============================================================================
//                              管道回调
// ============================================================================

// PipeAdded 实现 transport.Socket
//
// PAIR 套接字只接受一条管道；关闭中的套接字拒绝所有管道。
func (s *Socket) PipeAdded(p transport.Pipe) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, dup := s.pipes[p]; dup {
		s.mu.Unlock()
		return transport.ErrState
	}
	if s.typ == types.SocketPair && len(s.pipes) > 0 {
		s.mu.Unlock()
		return transport.ErrAlreadyConnected
	}
	s.pipes[p] = &pipeEntry{p: p, opts: p.Options()}
	s.mu.Unlock()

	s.events.pipeChanged(s.id, p.Endpoint().ID(), true)
	logger.Debug("管道已接入", "socket", s.id, "eid", p.Endpoint().ID())
	return nil
}

// PipeRemoved 实现 transport.Socket
func (s *Socket) PipeRemoved(p transport.Pipe) {
	s.mu.Lock()
	e, ok := s.pipes[p]
	if ok {
		delete(s.pipes, p)
		s.in.remove(e)
		s.out.remove(e)
	}
	s.mu.Unlock()

	if ok {
		s.events.pipeChanged(s.id, p.Endpoint().ID(), false)
		logger.Debug("管道已移除", "socket", s.id, "eid", p.Endpoint().ID())
	}
}

// dropPipe 摘除连接级出错的管道
//
// 管道从管道表与两个就绪列表中移除，端点可以为同一连接创建新管道；
// 传输随后调用的 Stop 不再触发移除通知。
func (s *Socket) dropPipe(e *pipeEntry) {
	s.mu.Lock()
	_, ok := s.pipes[e.p]
	if ok {
		delete(s.pipes, e.p)
	}
	s.in.remove(e)
	s.out.remove(e)
	s.mu.Unlock()

	if ok {
		s.events.pipeChanged(s.id, e.p.Endpoint().ID(), false)
		logger.Debug("失败管道已摘除", "socket", s.id, "eid", e.p.Endpoint().ID())
	}
}

// PipeIn 实现 transport.Socket
func (s *Socket) PipeIn(p transport.Pipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pipes[p]; ok {
		s.in.add(e, e.opts.RcvPrio)
		wake(&s.inSignal)
	}
}

// PipeOut 实现 transport.Socket
func (s *Socket) PipeOut(p transport.Pipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pipes[p]; ok {
		s.out.add(e, e.opts.SndPrio)
		wake(&s.outSignal)
	}
}

// wake 唤醒所有等待者并换上新的信号通道，调用方持有 s.mu
func wake(ch *chan struct{}) {
	close(*ch)
	*ch = make(chan struct{})
}

// ============================================================================
//                              收发步骤（执行上下文内）
// ============================================================================

// trySend 选择最高优先级的就绪管道发送
//
// 没有就绪管道时返回等待通道。
func (s *Socket) trySend(msg *types.Message) (bool, <-chan struct{}) {
	for {
		s.mu.Lock()
		e := s.out.pick()
		if e == nil {
			wait := s.outSignal
			s.mu.Unlock()
			return false, wait
		}
		s.mu.Unlock()

		size := msg.Size()
		flags, err := e.p.Send(msg)

		if err != nil {
			logger.Debug("管道发送失败，改用下一条管道", "socket", s.id, "eid", e.p.Endpoint().ID(), "err", err)
			s.dropPipe(e)
			continue
		}

		s.mu.Lock()
		if flags.Has(transport.FlagRelease) {
			s.out.remove(e)
		} else {
			s.out.advance(e)
		}
		s.mu.Unlock()

		s.stats.Add(types.StatMessagesSent, 1)
		s.stats.Add(types.StatBytesSent, int64(size))
		return true, nil
	}
}

// tryRecv 选择最高优先级的就绪管道接收
//
// 未带 PARSED 的消息按信封格式拆分头部与正文，格式错误的帧被丢弃。
func (s *Socket) tryRecv() (*types.Message, <-chan struct{}) {
	for {
		s.mu.Lock()
		e := s.in.pick()
		if e == nil {
			wait := s.inSignal
			s.mu.Unlock()
			return nil, wait
		}
		s.mu.Unlock()

		msg := &types.Message{}
		flags, err := e.p.Recv(msg)

		if err != nil {
			logger.Debug("管道接收失败，改用下一条管道", "socket", s.id, "eid", e.p.Endpoint().ID(), "err", err)
			s.dropPipe(e)
			continue
		}

		s.mu.Lock()
		if flags.Has(transport.FlagRelease) {
			s.in.remove(e)
		} else {
			s.in.advance(e)
		}
		s.mu.Unlock()

		if !flags.Has(transport.FlagParsed) {
			hdr, body, err := envelope.Split(msg.Body)
			if err != nil {
				logger.Warn("丢弃格式错误的消息", "socket", s.id, "eid", e.p.Endpoint().ID(), "err", err)
				continue
			}
			msg.Header, msg.Body = hdr, body
		}

		s.stats.Add(types.StatMessagesReceived, 1)
		s.stats.Add(types.StatBytesReceived, int64(msg.Size()))
		return msg, nil
	}
}

// ============================================================================
//                              应用侧收发
// ============================================================================

// Send 发送消息，阻塞到有管道可写、ctx 结束或 SNDTIMEO 到期
//
// 成功后消息归传输所有，调用方不得再修改。
func (s *Socket) Send(ctx context.Context, msg *types.Message) error {
	ctx, cancel := s.withTimeout(ctx, types.OptSndTimeo)
	defer cancel()

	for {
		var (
			sent bool
			wait <-chan struct{}
		)
		if err := s.exec(func() { sent, wait = s.trySend(msg) }); err != nil {
			return err
		}
		if sent {
			return nil
		}
		if err := s.await(ctx, wait); err != nil {
			return err
		}
	}
}

// TrySend 非阻塞发送，没有可写管道时返回 ErrWouldBlock
func (s *Socket) TrySend(msg *types.Message) error {
	var sent bool
	if err := s.exec(func() { sent, _ = s.trySend(msg) }); err != nil {
		return err
	}
	if !sent {
		return transport.ErrWouldBlock
	}
	return nil
}

// Recv 接收消息，阻塞到有管道可读、ctx 结束或 RCVTIMEO 到期
func (s *Socket) Recv(ctx context.Context) (*types.Message, error) {
	ctx, cancel := s.withTimeout(ctx, types.OptRcvTimeo)
	defer cancel()

	for {
		var (
			msg  *types.Message
			wait <-chan struct{}
		)
		if err := s.exec(func() { msg, wait = s.tryRecv() }); err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}
		if err := s.await(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// TryRecv 非阻塞接收，没有可读管道时返回 ErrWouldBlock
func (s *Socket) TryRecv() (*types.Message, error) {
	var msg *types.Message
	if err := s.exec(func() { msg, _ = s.tryRecv() }); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, transport.ErrWouldBlock
	}
	return msg, nil
}

func (s *Socket) exec(fn func()) error {
	select {
	case <-s.closingCh:
		return ErrClosed
	default:
	}
	if err := s.actx.Exec(fn); err != nil {
		if errors.Is(err, aio.ErrStopped) {
			return ErrClosed
		}
		return err
	}
	return nil
}

func (s *Socket) await(ctx context.Context, wait <-chan struct{}) error {
	select {
	case <-wait:
		return nil
	case <-s.closingCh:
		return ErrClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", transport.ErrTimeout, ctx.Err())
		}
		return ctx.Err()
	}
}

// withTimeout 按套接字超时选项给 ctx 加上截止时间
func (s *Socket) withTimeout(ctx context.Context, id types.OptionID) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	var d config.Duration
	if id == types.OptSndTimeo {
		d = s.opts.sndTimeo
	} else {
		d = s.opts.rcvTimeo
	}
	s.mu.Unlock()

	if d.IsInfinite() {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Duration())
}
