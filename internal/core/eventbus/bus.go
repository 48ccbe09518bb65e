package eventbus

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-sptransport/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrClosed 事件总线已关闭
	ErrClosed = errors.New("eventbus closed")

	// ErrEmitterClosed 发射器已关闭
	ErrEmitterClosed = errors.New("emitter closed")
)

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线
type Bus struct {
	mu     sync.RWMutex
	nodes  map[reflect.Type]*node
	closed bool
}

// sink 类型擦除后的订阅者
type sink interface {
	deliver(evt any) bool
	shutdown()
}

// node 单个事件类型的节点
type node struct {
	lk        sync.Mutex
	typ       reflect.Type
	sinks     []sink
	nEmitters atomic.Int32
	keepLast  bool
	last      any
	dropCount atomic.Int64
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		nodes: make(map[reflect.Type]*node),
	}
}

// Subscribe 订阅类型 E 的事件
func Subscribe[E any](b *Bus, opts ...SubscriptionOpt) (*Subscription[E], error) {
	settings := subscriptionSettings{buffer: 16}
	for _, opt := range opts {
		opt(&settings)
	}

	sub := &Subscription[E]{
		bus: b,
		typ: typeOf[E](),
		out: make(chan E, settings.buffer),
	}

	err := b.withNode(sub.typ, func(n *node) {
		n.sinks = append(n.sinks, sub)
		if n.keepLast && n.last != nil {
			sub.deliver(n.last)
		}
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// NewEmitter 创建类型 E 的发射器
func NewEmitter[E any](b *Bus, opts ...EmitterOpt) (*Emitter[E], error) {
	settings := emitterSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	typ := typeOf[E]()
	var n *node
	err := b.withNode(typ, func(nd *node) {
		n = nd
		n.nEmitters.Add(1)
		if settings.stateful {
			n.keepLast = true
		}
	})
	if err != nil {
		return nil, err
	}
	return &Emitter[E]{bus: b, node: n}, nil
}

// EventTypes 返回当前有订阅者或发射器的事件类型
func (b *Bus) EventTypes() []reflect.Type {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]reflect.Type, 0, len(b.nodes))
	for typ := range b.nodes {
		out = append(out, typ)
	}
	return out
}

// Dropped 返回类型 E 因缓冲区满而丢弃的事件数
func Dropped[E any](b *Bus) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n, ok := b.nodes[typeOf[E]()]; ok {
		return n.dropCount.Load()
	}
	return 0
}

// Close 关闭总线并关闭所有订阅
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	nodes := b.nodes
	b.nodes = make(map[reflect.Type]*node)
	b.mu.Unlock()

	for _, n := range nodes {
		n.lk.Lock()
		sinks := n.sinks
		n.sinks = nil
		n.lk.Unlock()
		for _, s := range sinks {
			s.shutdown()
		}
	}
	logger.Debug("事件总线已关闭", "types", len(nodes))
	return nil
}

// ============================================================================
// 内部方法
// ============================================================================

func typeOf[E any]() reflect.Type {
	return reflect.TypeOf((*E)(nil)).Elem()
}

// withNode 在节点锁内执行 cb，节点不存在时创建
func (b *Bus) withNode(typ reflect.Type, cb func(*node)) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	n, ok := b.nodes[typ]
	if !ok {
		n = &node{typ: typ}
		b.nodes[typ] = n
	}
	n.lk.Lock()
	b.mu.Unlock()

	cb(n)
	n.lk.Unlock()
	return nil
}

// tryDropNode 节点既无订阅者又无发射器时删除
func (b *Bus) tryDropNode(typ reflect.Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.nodes[typ]
	if !ok {
		return
	}
	n.lk.Lock()
	idle := len(n.sinks) == 0 && n.nEmitters.Load() == 0
	n.lk.Unlock()
	if idle {
		delete(b.nodes, typ)
	}
}

// removeSink 移除订阅者，返回是否找到
func (b *Bus) removeSink(typ reflect.Type, s sink) bool {
	b.mu.RLock()
	n, ok := b.nodes[typ]
	b.mu.RUnlock()
	if !ok {
		return false
	}

	n.lk.Lock()
	found := false
	for i, cur := range n.sinks {
		if cur == s {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			found = true
			break
		}
	}
	idle := len(n.sinks) == 0 && n.nEmitters.Load() == 0
	n.lk.Unlock()

	if idle {
		b.tryDropNode(typ)
	}
	return found
}

// emit 非阻塞地发送到所有订阅者
func (n *node) emit(evt any) {
	n.lk.Lock()
	defer n.lk.Unlock()

	if n.keepLast {
		n.last = evt
	}
	for _, s := range n.sinks {
		if s.deliver(evt) {
			continue
		}
		dropped := n.dropCount.Add(1)
		// 每丢弃 100 个事件警告一次
		if dropped%100 == 1 {
			logger.Warn("慢消费者检测", "dropped", dropped, "type", n.typ)
		}
	}
}
