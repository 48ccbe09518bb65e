package registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params 注册表依赖
type Params struct {
	fx.In

	// Transports 由各传输模块提供到 "transports" 组
	Transports []transport.Transport `group:"transports"`
}

// Result 注册表输出
type Result struct {
	fx.Out

	Registry  *Registry
	Interface transport.Registry
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("registry",
		fx.Provide(ProvideRegistry),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideRegistry 用组内传输创建注册表
func ProvideRegistry(p Params) (Result, error) {
	r, err := New(p.Transports...)
	if err != nil {
		return Result{}, err
	}
	return Result{Registry: r, Interface: r}, nil
}

func registerLifecycle(lc fx.Lifecycle, r *Registry) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return r.Close()
		},
	})
}
