package sptransport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/eventbus"
	"github.com/dep2p/go-sptransport/internal/core/metrics"
	"github.com/dep2p/go-sptransport/internal/core/registry"
	"github.com/dep2p/go-sptransport/internal/core/sock"
	coretransport "github.com/dep2p/go-sptransport/internal/core/transport"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/log"
)

var logger = log.Logger("sptransport")

// ============================================================================
//                              版本信息
// ============================================================================

// Version 当前版本
const Version = "v0.3.0"

// VersionInfo 版本详情
type VersionInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// GetVersionInfo 返回版本详情，GitCommit 与 BuildDate 由构建时注入
func GetVersionInfo() VersionInfo {
	return VersionInfo{Version: Version, GitCommit: gitCommit, BuildDate: buildDate}
}

var (
	gitCommit = "unknown"
	buildDate = "unknown"
)

// ============================================================================
//                              Library 结构
// ============================================================================

// libraryState 库状态
type libraryState int

const (
	stateIdle libraryState = iota
	stateStarting
	stateRunning
	stateClosed
)

// startTimeout Start 未带截止时间时使用的超时
const startTimeout = 30 * time.Second

// Library 传输库实例
//
// 持有传输注册表、事件总线与套接字工厂。Start 之后才能创建套接字；
// Close 关闭所有套接字并终止传输。
type Library struct {
	config *config.Config
	app    *fx.App

	factory   *sock.Factory
	registry  *registry.Registry
	bus       *eventbus.Bus
	manager   *coretransport.TransportManager
	collector *metrics.Collector

	mu    sync.Mutex
	state libraryState
}

// New 创建库实例但不启动
func New(opts ...Option) (*Library, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if o.config.Log.Level != "" {
		level, err := log.ParseLevel(o.config.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		log.SetLevel(level)
	}

	lib := &Library{config: o.config}
	app, err := buildFxApp(o, lib)
	if err != nil {
		return nil, err
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build library: %w", err)
	}
	lib.app = app
	return lib, nil
}

// Start 创建并启动库实例
func Start(ctx context.Context, opts ...Option) (*Library, error) {
	lib, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := lib.Start(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

// Start 启动库，首次启动时初始化所有传输
func (l *Library) Start(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case stateClosed:
		l.mu.Unlock()
		return ErrLibraryClosed
	case stateStarting, stateRunning:
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.state = stateStarting
	l.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, startTimeout)
		defer cancel()
	}

	if err := l.app.Start(ctx); err != nil {
		l.mu.Lock()
		l.state = stateIdle
		l.mu.Unlock()
		return fmt.Errorf("start library: %w", err)
	}

	l.mu.Lock()
	l.state = stateRunning
	l.mu.Unlock()
	logger.Info("传输库已启动", "transports", len(l.registry.Transports()))
	return nil
}

// Close 关闭库：关闭所有套接字、终止传输、关闭事件总线
//
// 未启动的库直接标记为关闭。重复调用返回 nil。
func (l *Library) Close(ctx context.Context) error {
	l.mu.Lock()
	prev := l.state
	if prev == stateClosed {
		l.mu.Unlock()
		return nil
	}
	l.state = stateClosed
	l.mu.Unlock()

	if prev != stateRunning {
		return nil
	}
	if err := l.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop library: %w", err)
	}
	logger.Info("传输库已关闭")
	return nil
}

// running 检查库是否运行中
func (l *Library) running() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case stateRunning:
		return nil
	case stateClosed:
		return ErrLibraryClosed
	default:
		return ErrNotStarted
	}
}

// ============================================================================
//                              公共 API
// ============================================================================

// Config 返回库使用的配置
func (l *Library) Config() *config.Config {
	return l.config
}

// NewSocket 创建套接字
func (l *Library) NewSocket(typ SocketType) (*Socket, error) {
	if err := l.running(); err != nil {
		return nil, err
	}
	return l.factory.NewSocket(typ)
}

// Sockets 返回当前打开的套接字
func (l *Library) Sockets() []*Socket {
	if l.factory == nil {
		return nil
	}
	return l.factory.Sockets()
}

// Registry 返回传输注册表
func (l *Library) Registry() transport.Registry {
	return l.registry
}

// Transports 返回已注册传输的协议名，按注册顺序
func (l *Library) Transports() []string {
	if l.registry == nil {
		return nil
	}
	ts := l.registry.Transports()
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.Name())
	}
	return names
}

// Collector 返回 Prometheus 收集器，指标关闭时为 nil
func (l *Library) Collector() *metrics.Collector {
	return l.collector
}

// Subscribe 订阅库的监控事件
//
// E 可以是 EvtEndpointError、EvtEndpointState 或 EvtPipe。
func Subscribe[E any](l *Library, opts ...eventbus.SubscriptionOpt) (*eventbus.Subscription[E], error) {
	if err := l.running(); err != nil {
		return nil, err
	}
	return eventbus.Subscribe[E](l.bus, opts...)
}
