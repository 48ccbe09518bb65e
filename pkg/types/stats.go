package types

import "fmt"

// StatName 套接字统计项
type StatName int

// 统计项编号
const (
	StatEstablishedConnections StatName = 101
	StatAcceptedConnections    StatName = 102
	StatDroppedConnections     StatName = 103
	StatBrokenConnections      StatName = 104
	StatConnectErrors          StatName = 105
	StatBindErrors             StatName = 106
	StatAcceptErrors           StatName = 107

	StatCurrentConnections    StatName = 201
	StatInprogressConnections StatName = 202
	StatCurrentEpErrors       StatName = 203

	StatMessagesSent     StatName = 301
	StatMessagesReceived StatName = 302
	StatBytesSent        StatName = 303
	StatBytesReceived    StatName = 304
)

// AllStats 返回所有统计项
func AllStats() []StatName {
	return []StatName{
		StatEstablishedConnections, StatAcceptedConnections, StatDroppedConnections,
		StatBrokenConnections, StatConnectErrors, StatBindErrors, StatAcceptErrors,
		StatCurrentConnections, StatInprogressConnections, StatCurrentEpErrors,
		StatMessagesSent, StatMessagesReceived, StatBytesSent, StatBytesReceived,
	}
}

// IsGauge 判断统计项是否为瞬时值（可增可减）
func (s StatName) IsGauge() bool {
	return s/100 == 2
}

// String 返回统计项名称（snake_case，用作指标名）
func (s StatName) String() string {
	switch s {
	case StatEstablishedConnections:
		return "established_connections"
	case StatAcceptedConnections:
		return "accepted_connections"
	case StatDroppedConnections:
		return "dropped_connections"
	case StatBrokenConnections:
		return "broken_connections"
	case StatConnectErrors:
		return "connect_errors"
	case StatBindErrors:
		return "bind_errors"
	case StatAcceptErrors:
		return "accept_errors"
	case StatCurrentConnections:
		return "current_connections"
	case StatInprogressConnections:
		return "inprogress_connections"
	case StatCurrentEpErrors:
		return "current_ep_errors"
	case StatMessagesSent:
		return "messages_sent"
	case StatMessagesReceived:
		return "messages_received"
	case StatBytesSent:
		return "bytes_sent"
	case StatBytesReceived:
		return "bytes_received"
	default:
		return fmt.Sprintf("stat_%d", int(s))
	}
}
