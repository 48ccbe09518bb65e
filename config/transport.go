package config

import "errors"

// TransportConfig 内置传输配置
type TransportConfig struct {
	// EnableInproc 是否注册进程内传输
	// 默认值: true
	EnableInproc bool `json:"enable_inproc"`

	// Inproc 进程内传输配置
	Inproc InprocConfig `json:"inproc"`
}

// InprocConfig 进程内传输配置
type InprocConfig struct {
	// MaxConnections 每个绑定端点接受的最大会话数，0 表示不限制
	MaxConnections int `json:"max_connections"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		EnableInproc: true,
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.Inproc.MaxConnections < 0 {
		return errors.New("inproc max_connections must not be negative")
	}
	return nil
}

// WithInproc 设置进程内传输开关
func (c TransportConfig) WithInproc(enabled bool) TransportConfig {
	c.EnableInproc = enabled
	return c
}
