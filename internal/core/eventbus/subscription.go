package eventbus

import (
	"reflect"
	"sync"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 类型 E 的订阅
type Subscription[E any] struct {
	bus       *Bus
	typ       reflect.Type
	out       chan E
	closeOnce sync.Once
}

// Out 返回事件通道，订阅关闭后通道关闭
func (s *Subscription[E]) Out() <-chan E {
	return s.out
}

// Close 取消订阅，可重复调用
func (s *Subscription[E]) Close() error {
	if s.bus.removeSink(s.typ, s) {
		s.shutdown()
	}
	return nil
}

// deliver 调用方持有节点锁
func (s *Subscription[E]) deliver(evt any) bool {
	select {
	case s.out <- evt.(E):
		return true
	default:
		return false
	}
}

// shutdown 关闭通道，只在订阅已从节点移除后调用
func (s *Subscription[E]) shutdown() {
	s.closeOnce.Do(func() {
		close(s.out)
	})
}

// ============================================================================
// Emitter 实现
// ============================================================================

// Emitter 类型 E 的发射器
type Emitter[E any] struct {
	bus       *Bus
	node      *node
	closeOnce sync.Once
	closed    bool
	mu        sync.RWMutex
}

// Emit 发射事件，从不阻塞
func (e *Emitter[E]) Emit(evt E) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrEmitterClosed
	}
	e.node.emit(evt)
	return nil
}

// Close 关闭发射器，可重复调用
func (e *Emitter[E]) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		if e.node.nEmitters.Add(-1) == 0 {
			e.bus.tryDropNode(e.node.typ)
		}
	})
	return nil
}
