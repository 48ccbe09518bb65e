package sock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/endpoint"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// Close 关闭套接字
//
// 先停止所有端点，在 LINGER 时间内等待它们完成停止，然后停止执行上下文、
// 释放传输选项集并注销注册表使用者。重复调用返回 ErrClosed。
func (s *Socket) Close(ctx context.Context) error {
	s.bindMu.Lock()
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		s.bindMu.Unlock()
		<-s.closeDone
		return ErrClosed
	}
	s.closing = true
	close(s.closingCh)
	eps := make([]*endpoint.Endpoint, 0, len(s.eps))
	for _, ep := range s.eps {
		eps = append(eps, ep)
	}
	linger := s.opts.linger
	s.mu.Unlock()
	s.bindMu.Unlock()

	logger.Debug("套接字关闭中", "socket", s.id, "endpoints", len(eps))

	sort.Slice(eps, func(i, j int) bool { return eps[i].ID() < eps[j].ID() })
	for _, ep := range eps {
		ep.Stop()
	}
	s.checkDrained()

	var errs error
	if err := s.awaitDrained(ctx, linger); err != nil {
		logger.Warn("端点未在 linger 内停止", "socket", s.id, "err", err)
		errs = multierr.Append(errs, err)
	}

	s.actx.Stop()

	s.mu.Lock()
	optsets := make([]transport.OptionSet, 0, len(s.optsets))
	for _, set := range s.optsets {
		optsets = append(optsets, set)
	}
	s.optsets = nil
	s.mu.Unlock()
	for _, set := range optsets {
		set.Destroy()
	}

	errs = multierr.Append(errs, s.events.close())
	if s.collector != nil {
		s.collector.Unregister(s.id)
	}
	s.reg.Release()
	if s.onClose != nil {
		s.onClose(s)
	}
	close(s.closeDone)

	logger.Debug("套接字已关闭", "socket", s.id)
	return errs
}

func (s *Socket) awaitDrained(ctx context.Context, linger config.Duration) error {
	select {
	case <-s.drained:
		return nil
	default:
	}

	var expired <-chan time.Time
	if !linger.IsInfinite() {
		t := s.clk.Timer(linger.Duration())
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-s.drained:
		return nil
	case <-expired:
		return fmt.Errorf("%w: %d remaining", ErrLingerExpired, s.endpointCount())
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed 套接字开始关闭时关闭
func (s *Socket) Closed() <-chan struct{} {
	return s.closingCh
}
