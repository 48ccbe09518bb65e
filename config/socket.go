package config

import (
	"errors"
	"fmt"
	"time"
)

// 优先级范围，1 最高
const (
	MinPriority = 1
	MaxPriority = 16
)

// SocketConfig 新建套接字的默认选项
//
// 每个字段对应一个套接字层选项，套接字创建后仍可通过 SetOption 修改。
type SocketConfig struct {
	// Linger 关闭时等待端点完成停止的最长时间
	// 默认值: 1s
	Linger Duration `json:"linger"`

	// SndBuf 发送缓冲区大小（字节）
	// 默认值: 128 KiB
	SndBuf int `json:"sndbuf"`

	// RcvBuf 接收缓冲区大小（字节）
	// 默认值: 128 KiB
	RcvBuf int `json:"rcvbuf"`

	// SndTimeout 发送超时，负值表示无限
	SndTimeout Duration `json:"sndtimeo"`

	// RcvTimeout 接收超时，负值表示无限
	RcvTimeout Duration `json:"rcvtimeo"`

	// ReconnectIvl 连接端点的重连间隔
	// 默认值: 100ms
	ReconnectIvl Duration `json:"reconnect_ivl"`

	// ReconnectIvlMax 重连间隔上限，0 表示不做指数退避
	ReconnectIvlMax Duration `json:"reconnect_ivl_max"`

	// SndPrio 发送优先级
	// 默认值: 8
	SndPrio int `json:"sndprio"`

	// RcvPrio 接收优先级
	// 默认值: 8
	RcvPrio int `json:"rcvprio"`

	// IPv4Only 是否仅使用 IPv4
	// 默认值: true
	IPv4Only bool `json:"ipv4only"`

	// RcvMaxSize 可接收的最大消息（字节），负值表示不限制
	// 默认值: 1 MiB
	RcvMaxSize int `json:"rcvmaxsize"`

	// MaxTTL 最大跳数
	// 默认值: 8
	MaxTTL int `json:"maxttl"`
}

// DefaultSocketConfig 返回默认套接字配置
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		Linger:          Duration(time.Second),
		SndBuf:          128 * 1024,
		RcvBuf:          128 * 1024,
		SndTimeout:      Infinite,
		RcvTimeout:      Infinite,
		ReconnectIvl:    Duration(100 * time.Millisecond),
		ReconnectIvlMax: 0,
		SndPrio:         8,
		RcvPrio:         8,
		IPv4Only:        true,
		RcvMaxSize:      1024 * 1024,
		MaxTTL:          8,
	}
}

// Validate 验证套接字配置
func (c SocketConfig) Validate() error {
	if c.SndBuf <= 0 {
		return errors.New("sndbuf must be positive")
	}
	if c.RcvBuf <= 0 {
		return errors.New("rcvbuf must be positive")
	}
	if c.SndPrio < MinPriority || c.SndPrio > MaxPriority {
		return fmt.Errorf("sndprio must be in [%d, %d]", MinPriority, MaxPriority)
	}
	if c.RcvPrio < MinPriority || c.RcvPrio > MaxPriority {
		return fmt.Errorf("rcvprio must be in [%d, %d]", MinPriority, MaxPriority)
	}
	if c.ReconnectIvl < 0 {
		return errors.New("reconnect_ivl must not be negative")
	}
	if c.ReconnectIvlMax < 0 {
		return errors.New("reconnect_ivl_max must not be negative")
	}
	if c.MaxTTL < 1 || c.MaxTTL > 255 {
		return errors.New("maxttl must be in [1, 255]")
	}
	return nil
}

// WithLinger 设置关闭等待时间
func (c SocketConfig) WithLinger(d time.Duration) SocketConfig {
	c.Linger = Duration(d)
	return c
}

// WithBuffers 设置收发缓冲区大小
func (c SocketConfig) WithBuffers(snd, rcv int) SocketConfig {
	c.SndBuf = snd
	c.RcvBuf = rcv
	return c
}

// WithTimeouts 设置收发超时，负值表示无限
func (c SocketConfig) WithTimeouts(snd, rcv time.Duration) SocketConfig {
	c.SndTimeout = Duration(snd)
	c.RcvTimeout = Duration(rcv)
	return c
}

// WithPriorities 设置收发优先级
func (c SocketConfig) WithPriorities(snd, rcv int) SocketConfig {
	c.SndPrio = snd
	c.RcvPrio = rcv
	return c
}
