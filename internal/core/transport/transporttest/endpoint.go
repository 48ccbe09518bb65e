package transporttest

import (
	"sync"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// Endpoint 替身端点，实现 transport.EndpointOps
type Endpoint struct {
	t     *Transport
	ep    transport.Endpoint
	bound bool

	mu        sync.Mutex
	pipes     []*Pipe
	stops     int
	destroyed bool
}

var _ transport.EndpointOps = (*Endpoint)(nil)

// Stop 实现 transport.EndpointOps
//
// 停止所有管道；未开启 linger 时立即报告停止完成。
func (e *Endpoint) Stop() {
	e.mu.Lock()
	e.stops++
	pipes := append([]*Pipe(nil), e.pipes...)
	e.mu.Unlock()

	for _, p := range pipes {
		p.Close()
	}
	if !e.t.lingers() {
		e.ep.Stopped()
	}
}

// Destroy 实现 transport.EndpointOps
func (e *Endpoint) Destroy() {
	e.mu.Lock()
	e.destroyed = true
	e.mu.Unlock()
}

// Finish 结束 linger，报告停止完成
func (e *Endpoint) Finish() {
	e.ep.Stopped()
}

// NewPipe 创建并启动一条管道
func (e *Endpoint) NewPipe(parsed bool) (*Pipe, error) {
	p := newPipe(e, parsed)
	if err := p.base.Start(); err != nil {
		return p, err
	}
	e.mu.Lock()
	e.pipes = append(e.pipes, p)
	e.mu.Unlock()
	return p, nil
}

// Endpoint 返回核心端点
func (e *Endpoint) Endpoint() transport.Endpoint { return e.ep }

// Bound 是否由 Bind 创建
func (e *Endpoint) Bound() bool { return e.bound }

// Stops 返回 Stop 调用次数
func (e *Endpoint) Stops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}

// Destroyed 是否已销毁
func (e *Endpoint) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}

// Pipes 返回已启动的管道
func (e *Endpoint) Pipes() []*Pipe {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Pipe(nil), e.pipes...)
}
