package types

import (
	"encoding/binary"
	"errors"
)

// OptionLevel 选项层级
//
// LevelSocket 为套接字层；传输层选项以传输 ID 作为层级（惯例上为负数）。
type OptionLevel int

// LevelSocket 套接字层选项
const LevelSocket OptionLevel = 0

// OptionID 选项编号
type OptionID int

// 套接字层选项编号
const (
	OptLinger          OptionID = 1
	OptSndBuf          OptionID = 2
	OptRcvBuf          OptionID = 3
	OptSndTimeo        OptionID = 4
	OptRcvTimeo        OptionID = 5
	OptReconnectIvl    OptionID = 6
	OptReconnectIvlMax OptionID = 7
	OptSndPrio         OptionID = 8
	OptRcvPrio         OptionID = 9
	OptDomain          OptionID = 12
	OptProtocol        OptionID = 13
	OptIPv4Only        OptionID = 14
	OptSocketName      OptionID = 15
	OptRcvMaxSize      OptionID = 16
	OptMaxTTL          OptionID = 17
)

// IsEndpointScoped 判断选项是否由端点自身解析
//
// 只有发送优先级、接收优先级与 IPv4Only 三项在端点创建时快照。
func (id OptionID) IsEndpointScoped() bool {
	return id == OptSndPrio || id == OptRcvPrio || id == OptIPv4Only
}

// IntOptionSize 整数选项的固定长度（字节）
const IntOptionSize = 4

// ErrIntOptionSize 整数选项长度错误
var ErrIntOptionSize = errors.New("integer option must be 4 bytes")

// EncodeInt 将整数编码为选项值（4 字节小端）
func EncodeInt(v int) []byte {
	b := make([]byte, IntOptionSize)
	binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	return b
}

// DecodeInt 解码整数选项值
func DecodeInt(b []byte) (int, error) {
	if len(b) != IntOptionSize {
		return 0, ErrIntOptionSize
	}
	return int(int32(binary.LittleEndian.Uint32(b))), nil
}

// EndpointOptions 端点级选项快照
type EndpointOptions struct {
	// SndPrio 发送优先级，1 最高，16 最低
	SndPrio int

	// RcvPrio 接收优先级，1 最高，16 最低
	RcvPrio int

	// IPv4Only 是否仅使用 IPv4
	IPv4Only bool
}

// DefaultEndpointOptions 返回默认端点选项
func DefaultEndpointOptions() EndpointOptions {
	return EndpointOptions{
		SndPrio:  8,
		RcvPrio:  8,
		IPv4Only: true,
	}
}

// Get 读取端点级选项，第二个返回值表示 id 是否为端点级选项
func (o EndpointOptions) Get(id OptionID) (int, bool) {
	switch id {
	case OptSndPrio:
		return o.SndPrio, true
	case OptRcvPrio:
		return o.RcvPrio, true
	case OptIPv4Only:
		if o.IPv4Only {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
