package sock

import (
	"fmt"

	"github.com/dep2p/go-sptransport/internal/core/endpoint"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// ============================================================================
//                              Bind / Connect
// ============================================================================

// Bind 在地址上监听，返回端点编号
func (s *Socket) Bind(addr string) (int, error) {
	return s.addEndpoint(addr, true)
}

// Connect 连接到地址，返回端点编号
//
// 连接是异步的：返回成功只表示端点已创建，传输在后台建立管道。
func (s *Socket) Connect(addr string) (int, error) {
	return s.addEndpoint(addr, false)
}

func (s *Socket) addEndpoint(addr string, bind bool) (int, error) {
	op, errStat := "connect", types.StatConnectErrors
	if bind {
		op, errStat = "bind", types.StatBindErrors
	}

	t, err := s.reg.Lookup(addr)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", op, addr, err)
	}

	s.bindMu.Lock()
	defer s.bindMu.Unlock()

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	s.nextEID++
	eid := s.nextEID
	s.mu.Unlock()

	ep := endpoint.New(s, eid, addr)
	if bind {
		err = t.Bind(ep)
	} else {
		err = t.Connect(ep)
	}
	if err == nil {
		if err = ep.Activate(); err != nil {
			// 传输未安装钩子就返回成功：端点直接进入 Stopped，不会登记到套接字
			ep.Stop()
		}
	}
	if err != nil {
		s.stats.Add(errStat, 1)
		logger.Debug("端点创建失败", "socket", s.id, "op", op, "addr", addr, "err", err)
		return 0, fmt.Errorf("%s %q: %w", op, addr, err)
	}

	s.mu.Lock()
	s.eps[eid] = ep
	s.mu.Unlock()

	s.events.endpointState(s.id, ep, types.EndpointActive)
	logger.Debug("端点已添加", "socket", s.id, "op", op, "eid", eid, "addr", addr, "transport", t.Name())
	return eid, nil
}

// Shutdown 停止并移除端点
//
// 停止是异步的：端点在传输 linger 结束后才从套接字中移除并销毁。
func (s *Socket) Shutdown(eid int) error {
	s.mu.Lock()
	ep, ok := s.eps[eid]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEndpoint, eid)
	}

	if ep.State() == types.EndpointActive {
		s.events.endpointState(s.id, ep, types.EndpointStopping)
	}
	ep.Stop()
	return nil
}

// ============================================================================
//                              端点回调
// ============================================================================

// EndpointStopped 实现 transport.Socket
//
// 在执行上下文中运行：从端点表移除并销毁端点。
func (s *Socket) EndpointStopped(tep transport.Endpoint) {
	s.mu.Lock()
	ep, ok := s.eps[tep.ID()]
	if ok && transport.Endpoint(ep) == tep {
		delete(s.eps, tep.ID())
	} else {
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		logger.Debug("忽略未登记端点的停止通知", "socket", s.id, "eid", tep.ID())
		return
	}

	s.events.endpointState(s.id, ep, types.EndpointStopped)
	if err := ep.Destroy(); err != nil {
		logger.Warn("端点销毁失败", "socket", s.id, "eid", ep.ID(), "err", err)
	} else {
		s.events.endpointState(s.id, ep, types.EndpointDestroyed)
	}
	logger.Debug("端点已移除", "socket", s.id, "eid", ep.ID())
	s.checkDrained()
}

// ReportError 实现 transport.Socket
func (s *Socket) ReportError(ep transport.Endpoint, errno int) {
	if errno == 0 {
		logger.Debug("端点错误已清除", "socket", s.id, "eid", ep.ID(), "addr", ep.Addr())
	} else {
		logger.Info("端点错误", "socket", s.id, "eid", ep.ID(), "addr", ep.Addr(), "err", transport.Errno(errno))
	}
	s.events.endpointError(s.id, ep, errno)
}

// checkDrained 关闭中且端点表为空时唤醒 Close
func (s *Socket) checkDrained() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing && len(s.eps) == 0 && !s.isDrained {
		s.isDrained = true
		close(s.drained)
	}
}

func (s *Socket) endpointCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.eps)
}
