package transport

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/transport/inproc"
	transportif "github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/lib/log"
)

var logger = log.Logger("core/transport")

// Config 内置传输配置
type Config struct {
	// EnableInproc 是否注册进程内传输
	EnableInproc bool

	// Inproc 进程内传输配置
	Inproc config.InprocConfig
}

// ConfigFromUnified 从统一配置创建传输配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return NewConfig()
	}
	return Config{
		EnableInproc: cfg.Transport.EnableInproc,
		Inproc:       cfg.Transport.Inproc,
	}
}

// NewConfig 创建默认配置
func NewConfig() Config {
	d := config.DefaultTransportConfig()
	return Config{
		EnableInproc: d.EnableInproc,
		Inproc:       d.Inproc,
	}
}

// TransportManager 内置传输管理器
type TransportManager struct {
	config     Config
	inproc     *inproc.Transport
	transports []transportif.Transport
}

// NewTransportManager 按配置创建内置传输
func NewTransportManager(cfg Config) *TransportManager {
	tm := &TransportManager{config: cfg}

	if cfg.EnableInproc {
		tm.inproc = inproc.New(cfg.Inproc)
		tm.transports = append(tm.transports, tm.inproc)
		logger.Debug("进程内传输已创建", "maxConnections", cfg.Inproc.MaxConnections)
	}

	logger.Debug("传输管理器创建成功", "transportCount", len(tm.transports))
	return tm
}

// GetTransports 获取所有内置传输
func (tm *TransportManager) GetTransports() []transportif.Transport {
	return tm.transports
}

// Inproc 返回进程内传输，未启用时为 nil
func (tm *TransportManager) Inproc() *inproc.Transport {
	return tm.inproc
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params 传输模块依赖
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// TransportOutput Fx 输出
type TransportOutput struct {
	fx.Out

	TransportManager *TransportManager
	Transports       []transportif.Transport `group:"transports,flatten"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideTransports),
	)
}

// ProvideTransports 提供 TransportManager 和内置传输列表
func ProvideTransports(p Params) TransportOutput {
	tm := NewTransportManager(ConfigFromUnified(p.UnifiedCfg))
	return TransportOutput{
		TransportManager: tm,
		Transports:       tm.GetTransports(),
	}
}
