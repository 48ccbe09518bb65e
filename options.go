package sptransport

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config        *config.Config
	transports    []transport.Transport
	registerer    prometheus.Registerer
	clock         clock.Clock
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// WithConfig 使用完整配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithSocketDefaults 设置新套接字的默认选项
func WithSocketDefaults(sc config.SocketConfig) Option {
	return func(o *options) error {
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("socket defaults: %w", err)
		}
		o.config.Socket = sc
		return nil
	}
}

// WithTransports 注册额外的传输
func WithTransports(ts ...transport.Transport) Option {
	return func(o *options) error {
		for _, t := range ts {
			if t == nil {
				return errors.New("transport is nil")
			}
		}
		o.transports = append(o.transports, ts...)
		return nil
	}
}

// WithPrometheus 将套接字统计注册到指定 Registerer
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		o.config.Metrics.Enabled = true
		return nil
	}
}

// WithClock 替换 linger 计时与速率窗口使用的时钟
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
