package inproc

import (
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// ============================================================================
//                              binder
// ============================================================================

// binder 绑定端点，接受任意数量的连接方
type binder struct {
	t    *Transport
	name string
	ep   transport.Endpoint

	// sessions 由 t.mu 保护
	sessions map[*session]struct{}
}

var _ transport.EndpointOps = (*binder)(nil)

// Stop 实现 transport.EndpointOps
//
// 释放名称并关闭所有会话；连接方回到等待状态。
func (b *binder) Stop() {
	t := b.t
	t.mu.Lock()
	if t.binders[b.name] == b {
		delete(t.binders, b.name)
	}
	sessions := make([]*session, 0, len(b.sessions))
	for s := range b.sessions {
		if s.conn.sess == s {
			s.conn.sess = nil
		}
		sessions = append(sessions, s)
	}
	b.sessions = make(map[*session]struct{})
	t.mu.Unlock()

	for _, s := range sessions {
		s.close(b.ep)
	}
	logger.Debug("进程内绑定端点已停止", "name", b.name, "eid", b.ep.ID(), "sessions", len(sessions))
	b.ep.Stopped()
}

// Destroy 实现 transport.EndpointOps
func (b *binder) Destroy() {
	logger.Debug("进程内绑定端点已销毁", "name", b.name, "eid", b.ep.ID())
}

// ============================================================================
//                              connector
// ============================================================================

// connector 连接端点，同一时刻最多一个会话
type connector struct {
	t    *Transport
	name string
	ep   transport.Endpoint

	// sess 由 t.mu 保护
	sess *session
}

var _ transport.EndpointOps = (*connector)(nil)

// Stop 实现 transport.EndpointOps
func (c *connector) Stop() {
	t := c.t
	t.mu.Lock()
	if set := t.connectors[c.name]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(t.connectors, c.name)
		}
	}
	s := c.sess
	c.sess = nil
	if s != nil {
		delete(s.bind.sessions, s)
	}
	t.mu.Unlock()

	if s != nil {
		s.close(c.ep)
	}
	logger.Debug("进程内连接端点已停止", "name", c.name, "eid", c.ep.ID())
	c.ep.Stopped()
}

// Destroy 实现 transport.EndpointOps
func (c *connector) Destroy() {
	logger.Debug("进程内连接端点已销毁", "name", c.name, "eid", c.ep.ID())
}
