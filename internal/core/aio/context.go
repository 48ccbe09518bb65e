package aio

import (
	"errors"
	"sync"

	"github.com/eapache/queue"

	"github.com/dep2p/go-sptransport/pkg/lib/log"
)

var logger = log.Logger("core/aio")

// ErrStopped 执行上下文已停止
var ErrStopped = errors.New("execution context stopped")

// Context 串行执行上下文
type Context struct {
	name string

	mu       sync.Mutex
	tasks    *queue.Queue // 无界 FIFO，Post 从不阻塞
	stopping bool

	wake chan struct{}
	done chan struct{}
}

// New 创建并启动执行上下文
func New(name string) *Context {
	c := &Context{
		name:  name,
		tasks: queue.New(),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go c.loop()
	return c
}

// Name 返回上下文名称
func (c *Context) Name() string {
	return c.name
}

// Post 投递一个步骤，上下文停止后返回 false
func (c *Context) Post(fn func()) bool {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return false
	}
	c.tasks.Add(fn)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// Exec 投递一个步骤并等待其执行完成
//
// 不能在本上下文的步骤内部调用，否则会死锁。
func (c *Context) Exec(fn func()) error {
	finished := make(chan struct{})
	if !c.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	<-finished
	return nil
}

// Pending 返回排队中的步骤数
func (c *Context) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks.Length()
}

// Stop 停止接收新步骤，执行完已排队的步骤后退出
//
// 可重复调用。
func (c *Context) Stop() {
	c.mu.Lock()
	already := c.stopping
	c.stopping = true
	c.mu.Unlock()

	if !already {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	<-c.done
}

// Done 上下文退出时关闭
func (c *Context) Done() <-chan struct{} {
	return c.done
}

func (c *Context) next() (func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tasks.Length() > 0 {
		return c.tasks.Remove().(func()), false
	}
	return nil, c.stopping
}

func (c *Context) loop() {
	defer close(c.done)
	for {
		fn, exit := c.next()
		if fn != nil {
			c.run(fn)
			continue
		}
		if exit {
			return
		}
		<-c.wake
	}
}

func (c *Context) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("执行步骤 panic", "context", c.name, "panic", r)
		}
	}()
	fn()
}
