// Package types 定义 sptransport 的基础数据类型
package types

import "fmt"

// ============================================================================
//                              套接字类型
// ============================================================================

// SocketType 套接字类型
//
// 编号沿用可扩展协议（SP）的经典约定：高 4 位为协议族，低 4 位为角色。
type SocketType int

// 套接字类型常量
const (
	SocketPair       SocketType = 1*16 + 0
	SocketPub        SocketType = 2*16 + 0
	SocketSub        SocketType = 2*16 + 1
	SocketReq        SocketType = 3*16 + 0
	SocketRep        SocketType = 3*16 + 1
	SocketPush       SocketType = 5*16 + 0
	SocketPull       SocketType = 5*16 + 1
	SocketSurveyor   SocketType = 6*16 + 2
	SocketRespondent SocketType = 6*16 + 3
	SocketBus        SocketType = 7*16 + 0
)

// peerTable 兼容矩阵：键为本端类型，值为允许的对端类型
//
// 表必须保持对称：a 允许 b 当且仅当 b 允许 a。
var peerTable = map[SocketType]SocketType{
	SocketPair:       SocketPair,
	SocketPub:        SocketSub,
	SocketSub:        SocketPub,
	SocketReq:        SocketRep,
	SocketRep:        SocketReq,
	SocketPush:       SocketPull,
	SocketPull:       SocketPush,
	SocketSurveyor:   SocketRespondent,
	SocketRespondent: SocketSurveyor,
	SocketBus:        SocketBus,
}

// Valid 判断是否为已知套接字类型
func (t SocketType) Valid() bool {
	_, ok := peerTable[t]
	return ok
}

// Protocol 返回协议族编号
func (t SocketType) Protocol() int {
	return int(t) / 16
}

// Peer 返回唯一合法的对端类型
func (t SocketType) Peer() (SocketType, bool) {
	p, ok := peerTable[t]
	return p, ok
}

// IsPeer 判断 other 是否可以与本类型的套接字建立管道
func (t SocketType) IsPeer(other SocketType) bool {
	p, ok := peerTable[t]
	return ok && p == other
}

// String 返回套接字类型名称
func (t SocketType) String() string {
	switch t {
	case SocketPair:
		return "pair"
	case SocketPub:
		return "pub"
	case SocketSub:
		return "sub"
	case SocketReq:
		return "req"
	case SocketRep:
		return "rep"
	case SocketPush:
		return "push"
	case SocketPull:
		return "pull"
	case SocketSurveyor:
		return "surveyor"
	case SocketRespondent:
		return "respondent"
	case SocketBus:
		return "bus"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// AllSocketTypes 返回所有已知套接字类型
func AllSocketTypes() []SocketType {
	return []SocketType{
		SocketPair, SocketPub, SocketSub, SocketReq, SocketRep,
		SocketPush, SocketPull, SocketSurveyor, SocketRespondent, SocketBus,
	}
}
