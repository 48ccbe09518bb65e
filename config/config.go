// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，带 Default*/Validate/With* 方法
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Socket = cfg.Socket.WithLinger(2 * time.Second)
//	cfg.Transport.EnableInproc = true
//
//	// 从 JSON 文件加载
//	cfg, err := config.Load("sptransport.json")
package config

// Config 是 sptransport 的完整配置结构
//
// 配置按照功能模块组织：
//   - Socket: 新建套接字的默认选项
//   - Transport: 内置传输开关
//   - Metrics: Prometheus 指标导出
//   - Log: 日志级别与 fx 事件日志
type Config struct {
	// Socket 套接字默认选项
	Socket SocketConfig `json:"socket"`

	// Transport 传输配置
	Transport TransportConfig `json:"transport"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Socket:    DefaultSocketConfig(),
		Transport: DefaultTransportConfig(),
		Metrics:   DefaultMetricsConfig(),
		Log:       DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 建议在使用配置前调用此方法。
func (c *Config) Validate() error {
	if err := c.Socket.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
