package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-sptransport/config"
)

// Config 指标配置
type Config struct {
	// Enabled 是否向 Prometheus 注册收集器
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled: true,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled: cfg.Metrics.Enabled,
	}
}

// Params 指标模块依赖
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewCollector),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle 启动时向 Registerer 注册收集器，停止时注销
func registerLifecycle(lc fx.Lifecycle, c *Collector, p Params) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled || p.Registerer == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return p.Registerer.Register(c)
		},
		OnStop: func(_ context.Context) error {
			p.Registerer.Unregister(c)
			return nil
		},
	})
}
