package sptransport

import (
	"github.com/dep2p/go-sptransport/internal/core/sock"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// Socket 套接字
type Socket = sock.Socket

// Message 消息
type Message = types.Message

// SocketType 套接字类型
type SocketType = types.SocketType

// 套接字类型
const (
	Pair       = types.SocketPair
	Pub        = types.SocketPub
	Sub        = types.SocketSub
	Req        = types.SocketReq
	Rep        = types.SocketRep
	Push       = types.SocketPush
	Pull       = types.SocketPull
	Surveyor   = types.SocketSurveyor
	Respondent = types.SocketRespondent
	Bus        = types.SocketBus
)

// NewMessage 创建只有正文的消息
func NewMessage(body []byte) *Message {
	return types.NewMessage(body)
}

// 监控事件
type (
	EvtEndpointError = types.EvtEndpointError
	EvtEndpointState = types.EvtEndpointState
	EvtPipe          = types.EvtPipe
)
