// Package sockettest 提供测试用的套接字核心替身
//
// Socket 记录端点与管道发出的所有回调，供状态机测试断言。
package sockettest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-sptransport/internal/core/aio"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// ErrorReport 一次监控通知
type ErrorReport struct {
	EndpointID int
	Errno      int
}

// Socket 记录型套接字替身
type Socket struct {
	id  string
	typ types.SocketType
	ctx *aio.Context

	// EpOpts 新端点的选项快照
	EpOpts types.EndpointOptions

	// AddErr 非 nil 时 PipeAdded 拒绝管道
	AddErr error

	mu      sync.Mutex
	options map[types.OptionLevel]map[types.OptionID][]byte
	stats   map[types.StatName]int64
	errors  []ErrorReport
	added   []transport.Pipe
	removed []transport.Pipe
	in      map[transport.Pipe]int
	out     map[transport.Pipe]int
	stopped map[int]int
}

var _ transport.Socket = (*Socket)(nil)

// New 创建替身，带独立执行上下文
func New(typ types.SocketType) *Socket {
	id := uuid.NewString()
	return &Socket{
		id:      id,
		typ:     typ,
		ctx:     aio.New("sockettest-" + id[:8]),
		EpOpts:  types.DefaultEndpointOptions(),
		options: make(map[types.OptionLevel]map[types.OptionID][]byte),
		stats:   make(map[types.StatName]int64),
		in:      make(map[transport.Pipe]int),
		out:     make(map[transport.Pipe]int),
		stopped: make(map[int]int),
	}
}

// Close 停止执行上下文
func (s *Socket) Close() {
	s.ctx.Stop()
}

// Sync 等待执行上下文中已排队的回调全部执行完
func (s *Socket) Sync() {
	_ = s.ctx.Exec(func() {})
}

// SetOption 设置 SocketOption 的返回值
func (s *Socket) SetOption(level types.OptionLevel, id types.OptionID, v []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.options[level] == nil {
		s.options[level] = make(map[types.OptionID][]byte)
	}
	s.options[level][id] = v
}

// ============================================================================
//                              transport.Socket
// ============================================================================

// ID 实现 transport.Socket
func (s *Socket) ID() string { return s.id }

// Type 实现 transport.Socket
func (s *Socket) Type() types.SocketType { return s.typ }

// Context 实现 transport.Socket
func (s *Socket) Context() transport.Executor { return s.ctx }

// EndpointOptions 实现 transport.Socket
func (s *Socket) EndpointOptions() types.EndpointOptions { return s.EpOpts }

// SocketOption 实现 transport.Socket
func (s *Socket) SocketOption(level types.OptionLevel, id types.OptionID, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.options[level][id]
	if !ok {
		return 0, transport.ErrUnsupportedOption
	}
	copy(buf, v)
	return len(v), nil
}

// StatIncrement 实现 transport.Socket
func (s *Socket) StatIncrement(name types.StatName, delta int64) {
	s.mu.Lock()
	s.stats[name] += delta
	s.mu.Unlock()
}

// ReportError 实现 transport.Socket
func (s *Socket) ReportError(ep transport.Endpoint, errno int) {
	s.mu.Lock()
	s.errors = append(s.errors, ErrorReport{EndpointID: ep.ID(), Errno: errno})
	s.mu.Unlock()
}

// PipeAdded 实现 transport.Socket
func (s *Socket) PipeAdded(p transport.Pipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AddErr != nil {
		return s.AddErr
	}
	s.added = append(s.added, p)
	return nil
}

// PipeRemoved 实现 transport.Socket
func (s *Socket) PipeRemoved(p transport.Pipe) {
	s.mu.Lock()
	s.removed = append(s.removed, p)
	s.mu.Unlock()
}

// PipeIn 实现 transport.Socket
func (s *Socket) PipeIn(p transport.Pipe) {
	s.mu.Lock()
	s.in[p]++
	s.mu.Unlock()
}

// PipeOut 实现 transport.Socket
func (s *Socket) PipeOut(p transport.Pipe) {
	s.mu.Lock()
	s.out[p]++
	s.mu.Unlock()
}

// EndpointStopped 实现 transport.Socket
func (s *Socket) EndpointStopped(ep transport.Endpoint) {
	s.mu.Lock()
	s.stopped[ep.ID()]++
	s.mu.Unlock()
}

// ============================================================================
//                              断言辅助
// ============================================================================

// Stat 返回统计值
func (s *Socket) Stat(name types.StatName) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[name]
}

// Errors 返回监控通知副本
func (s *Socket) Errors() []ErrorReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ErrorReport(nil), s.errors...)
}

// AddedCount 返回接入的管道数
func (s *Socket) AddedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.added)
}

// RemovedCount 返回移除的管道数
func (s *Socket) RemovedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.removed)
}

// InCount 返回管道收到的 in 事件数
func (s *Socket) InCount(p transport.Pipe) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in[p]
}

// OutCount 返回管道收到的 out 事件数
func (s *Socket) OutCount(p transport.Pipe) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out[p]
}

// StoppedCount 返回端点停止完成通知次数
func (s *Socket) StoppedCount(eid int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped[eid]
}
