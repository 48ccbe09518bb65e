package sock

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/eventbus"
	"github.com/dep2p/go-sptransport/internal/core/metrics"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params 套接字工厂依赖
type Params struct {
	fx.In

	Registry   transport.Registry
	UnifiedCfg *config.Config     `optional:"true"`
	Bus        *eventbus.Bus      `optional:"true"`
	Collector  *metrics.Collector `optional:"true"`
	Clock      clock.Clock        `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("sock",
		fx.Provide(ProvideFactory),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideFactory 创建套接字工厂
func ProvideFactory(p Params) *Factory {
	cfg := config.DefaultSocketConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Socket
	}
	return NewFactory(Deps{
		Registry:  p.Registry,
		Config:    cfg,
		Clock:     p.Clock,
		Bus:       p.Bus,
		Collector: p.Collector,
	})
}

// registerLifecycle 停止时关闭所有未关闭的套接字
func registerLifecycle(lc fx.Lifecycle, f *Factory) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return f.Close(ctx)
		},
	})
}
