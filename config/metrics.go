package config

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否向 Prometheus 注册收集器
	// 默认值: true
	Enabled bool `json:"enabled"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: true,
	}
}
