// Package transport 定义套接字核心与可插拔传输之间的契约
//
// 三个对象构成边界：
//   - Transport：传输描述符，注册一次，提供 init/term、bind/connect 与选项集工厂
//   - Endpoint：每次 bind/connect 创建一个，持有唯一地址与异步停止生命周期
//   - Pipe：每条连接一个，有序、双向、带流控的消息流
//
// 传输实现只通过这里声明的操作与核心交互；核心同样只通过这些操作驱动传输。
package transport

import (
	"github.com/dep2p/go-sptransport/pkg/types"
)

// ============================================================================
//                              Transport 描述符
// ============================================================================

// Transport 传输描述符
//
// Bind 与 Connect 在套接字级临界区内调用：同一套接字上两者不会并发，
// 不同套接字之间可完全并行。返回 nil 之前必须通过 ep.Setup 安装自身的
// 停止/销毁钩子与私有数据；未 Setup 就返回 nil 的端点被视为失败，核心
// 无法调用其钩子，传输侧登记的资源需由传输自行回收。返回错误时端点
// 不会被激活，由调用方丢弃。
type Transport interface {
	// Name 地址中的协议名，如 "tcp"、"ipc"、"inproc"
	Name() string

	// ID 传输编号，同时作为传输层选项的层级
	ID() int

	// Bind 在端点地址上监听
	Bind(ep Endpoint) error

	// Connect 连接到端点地址
	Connect(ep Endpoint) error
}

// Initializer 可选：库首次使用时的初始化钩子
//
// Init/Term 由注册表的全局临界区保护，任意两个钩子不会并发执行。
type Initializer interface {
	Init()
}

// Terminator 可选：库最后一次使用结束时的终止钩子
type Terminator interface {
	Term()
}

// OptionSetProvider 可选：创建传输专属的选项集
//
// 未实现该接口的传输没有专属选项，对其层级的选项读写视为不支持。
type OptionSetProvider interface {
	OptionSet() OptionSet
}

// ============================================================================
//                              OptionSet
// ============================================================================

// OptionSet 传输专属的套接字选项容器
type OptionSet interface {
	// SetOption 设置选项，未知 id 返回 ENOPROTOOPT，值格式错误返回 EINVAL
	SetOption(id types.OptionID, value []byte) error

	// GetOption 读取选项到 buf
	//
	// 返回值的完整长度；若 len(buf) 较小则截断复制。
	GetOption(id types.OptionID, buf []byte) (int, error)

	// Destroy 释放选项集
	Destroy()
}

// ============================================================================
//                              执行上下文
// ============================================================================

// Executor 端点与管道所绑定的执行上下文
//
// 同一上下文内一次只运行一个步骤；Post 从不阻塞，上下文停止后返回 false。
type Executor interface {
	Post(fn func()) bool
}

// ============================================================================
//                              Endpoint
// ============================================================================

// EndpointOps 传输为端点提供的钩子
type EndpointOps interface {
	// Stop 请求停止。传输可以继续发送积压数据（linger），
	// 完成后必须调用 Endpoint.Stopped。
	Stop()

	// Destroy 释放传输私有资源，只在停止完成后调用一次
	Destroy()
}

// Endpoint 传输看到的端点
type Endpoint interface {
	// ID 端点编号（套接字内唯一）
	ID() int

	// Setup 安装钩子与传输私有数据，只允许一次
	Setup(ops EndpointOps, private any) error

	// Private 返回 Setup 时附加的私有数据
	Private() any

	// Stopped 通知停止完成；重复调用被忽略
	Stopped()

	// Context 返回端点绑定的执行上下文
	Context() Executor

	// Addr 返回创建时的地址字符串（不可变）
	Addr() string

	// Socket 返回所属套接字（非拥有引用）
	Socket() Socket

	// SocketType 返回所属套接字类型
	SocketType() types.SocketType

	// Option 读取选项：先解析端点级选项，再回落到套接字
	Option(level types.OptionLevel, id types.OptionID, buf []byte) (int, error)

	// IntOption 读取整数选项
	IntOption(level types.OptionLevel, id types.OptionID) (int, error)

	// Options 返回端点级选项快照
	Options() types.EndpointOptions

	// IsPeer 判断 t 是否为合法对端类型
	IsPeer(t types.SocketType) bool

	// IsPeerEP 判断两个端点是否互为合法对端（对称）
	IsPeerEP(other Endpoint) bool

	// SetError 通知监控系统端点出错，尽力而为
	SetError(errno int)

	// ClearError 通知监控系统错误已恢复，尽力而为
	ClearError()

	// StatIncrement 更新所属套接字的统计计数
	StatIncrement(name types.StatName, delta int64)
}

// Private 以类型 T 取出端点私有数据
func Private[T any](ep Endpoint) (T, bool) {
	v, ok := ep.Private().(T)
	return v, ok
}

// ============================================================================
//                              Pipe
// ============================================================================

// PipeOps 传输为管道实现的收发操作
//
// 返回错误表示连接级失败；否则返回 Flags。传输若在调用内部已完成
// 本次发送/接收，应在返回前调用 Pipe.Sent / Pipe.Received。
type PipeOps interface {
	Send(msg *types.Message) (Flags, error)
	Recv(msg *types.Message) (Flags, error)
}

// Pipe 核心看到的管道
type Pipe interface {
	// Send 交给传输发送；返回 FlagRelease 后在 out 事件前不得再调用
	Send(msg *types.Message) (Flags, error)

	// Recv 从传输接收；返回 FlagRelease 后在 in 事件前不得再调用
	Recv(msg *types.Message) (Flags, error)

	// Endpoint 返回所属端点（非拥有引用）
	Endpoint() Endpoint

	// Options 返回创建时的端点选项快照
	Options() types.EndpointOptions
}

// ============================================================================
//                              Socket
// ============================================================================

// Socket 套接字核心对端点与管道暴露的能力
//
// 所有方法必须并发安全。PipeIn、PipeOut 与 EndpointStopped 由管道和端点
// 经套接字的执行上下文投递；PipeAdded 与 PipeRemoved 在 Start/Stop 中同步调用。
type Socket interface {
	// ID 套接字实例编号
	ID() string

	// Type 套接字类型
	Type() types.SocketType

	// Context 套接字的执行上下文
	Context() Executor

	// SocketOption 读取套接字层或传输层选项
	SocketOption(level types.OptionLevel, id types.OptionID, buf []byte) (int, error)

	// EndpointOptions 新端点使用的选项快照
	EndpointOptions() types.EndpointOptions

	// StatIncrement 并发安全的统计更新
	StatIncrement(name types.StatName, delta int64)

	// ReportError 监控通知，errno 为 0 表示清除
	ReportError(ep Endpoint, errno int)

	// PipeAdded 管道启动时同步调用，可拒绝
	PipeAdded(p Pipe) error

	// PipeRemoved 管道停止
	PipeRemoved(p Pipe)

	// PipeIn 管道入方向恢复
	PipeIn(p Pipe)

	// PipeOut 管道出方向恢复
	PipeOut(p Pipe)

	// EndpointStopped 端点停止完成（每个端点恰好一次）
	EndpointStopped(ep Endpoint)
}
