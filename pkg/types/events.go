package types

import "time"

// ============================================================================
//                              监控事件
// ============================================================================

// EvtEndpointError 端点错误状态变化
//
// Errno 为 0 表示错误已清除。
type EvtEndpointError struct {
	SocketID   string
	EndpointID int
	Addr       string
	Errno      int
	Time       time.Time
}

// Cleared 判断事件是否表示错误清除
func (e EvtEndpointError) Cleared() bool {
	return e.Errno == 0
}

// EndpointState 端点生命周期状态
type EndpointState int

// 端点状态
const (
	EndpointCreated EndpointState = iota
	EndpointActive
	EndpointStopping
	EndpointStopped
	EndpointDestroyed
)

// String 返回状态名称
func (s EndpointState) String() string {
	switch s {
	case EndpointCreated:
		return "created"
	case EndpointActive:
		return "active"
	case EndpointStopping:
		return "stopping"
	case EndpointStopped:
		return "stopped"
	case EndpointDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// EvtEndpointState 端点状态变化
type EvtEndpointState struct {
	SocketID   string
	EndpointID int
	Addr       string
	State      EndpointState
	Time       time.Time
}

// EvtPipe 管道接入或移除
type EvtPipe struct {
	SocketID   string
	EndpointID int
	Attached   bool
	Time       time.Time
}
