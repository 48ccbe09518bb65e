package pipe

// State 管道整体状态
type State int

const (
	StateInit State = iota
	StateStarted
	StateStopped
	StateFailed
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FlowState 单方向子状态
type FlowState int

const (
	// FlowDisabled 未启动或已停止
	FlowDisabled FlowState = iota
	// FlowFlowing 可以调用
	FlowFlowing
	// FlowBusy 正在调用传输
	FlowBusy
	// FlowDone 调用期间传输已报告完成
	FlowDone
	// FlowReleased 等待传输恢复
	FlowReleased
)

// String 返回子状态名称
func (s FlowState) String() string {
	switch s {
	case FlowDisabled:
		return "disabled"
	case FlowFlowing:
		return "flowing"
	case FlowBusy:
		return "busy"
	case FlowDone:
		return "done"
	case FlowReleased:
		return "released"
	default:
		return "unknown"
	}
}

type direction int

const (
	dirIn direction = iota
	dirOut
)

func (d direction) String() string {
	if d == dirIn {
		return "in"
	}
	return "out"
}
