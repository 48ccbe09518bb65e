package sptransport

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/eventbus"
	"github.com/dep2p/go-sptransport/internal/core/metrics"
	"github.com/dep2p/go-sptransport/internal/core/registry"
	"github.com/dep2p/go-sptransport/internal/core/sock"
	coretransport "github.com/dep2p/go-sptransport/internal/core/transport"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// ============================================================================
//                              Fx 应用构建
// ============================================================================

// buildFxApp 构建 Fx 应用
//
// 模块顺序决定停止顺序：套接字先于注册表与事件总线关闭。
func buildFxApp(o *options, lib *Library) (*fx.App, error) {
	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		eventbus.Module(),
		coretransport.Module(),
		registry.Module(),
	}

	for _, t := range o.transports {
		modules = append(modules, fx.Provide(
			fx.Annotate(
				newTransportSupplier(t),
				fx.ResultTags(`group:"transports"`),
			),
		))
	}

	if cfg.Metrics.Enabled {
		modules = append(modules, metrics.Module)
		if o.registerer != nil {
			reg := o.registerer
			modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
		}
	}

	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	modules = append(modules, sock.Module())
	modules = append(modules, o.userFxOptions...)
	modules = append(modules,
		fx.Invoke(injectComponents(lib)),
		fx.WithLogger(fxLogger(cfg.Log)),
	)

	return fx.New(modules...), nil
}

// newTransportSupplier 包装用户传输，使每个实例都是独立的构造函数
func newTransportSupplier(t transport.Transport) func() transport.Transport {
	return func() transport.Transport { return t }
}

// fxLogger 选择 fx 事件日志器
func fxLogger(cfg config.LogConfig) func() fxevent.Logger {
	return func() fxevent.Logger {
		if cfg.FxEvents {
			if l, err := zap.NewDevelopment(); err == nil {
				return &fxevent.ZapLogger{Logger: l}
			}
		}
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
}

// components 注入到 Library 的组件
type components struct {
	fx.In

	Factory   *sock.Factory
	Registry  *registry.Registry
	Bus       *eventbus.Bus
	Manager   *coretransport.TransportManager
	Collector *metrics.Collector `optional:"true"`
}

// injectComponents 创建组件注入函数
func injectComponents(lib *Library) func(components) {
	return func(c components) {
		lib.factory = c.Factory
		lib.registry = c.Registry
		lib.bus = c.Bus
		lib.manager = c.Manager
		lib.collector = c.Collector
	}
}
