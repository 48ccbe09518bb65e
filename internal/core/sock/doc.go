// Package sock 实现最小套接字核心
//
// 套接字核心是传输边界另一侧的协作者：它按地址选择传输、创建端点、
// 维护端点表，接收管道的接入/移除与恢复事件，并在就绪管道上收发消息。
// 完整的套接字协议逻辑（REQ 重试、SUB 过滤等）不在本包范围内，核心只
// 在就绪管道中按优先级轮询选择。
//
// # 执行模型
//
// 每个套接字有一个 aio.Context。所有管道 Send/Recv 调用以及管道、端点
// 事件处理都在该上下文中串行执行；调用方的 Send/Recv 通过 Exec 进入
// 上下文，无就绪管道时在信号通道上等待。
//
// Bind/Connect 在套接字级互斥锁 bindMu 内调用传输，同一套接字上两者
// 不会并发，不同套接字之间完全并行。
//
// # 关闭
//
// Close 停止所有端点，在 Linger 时间内等待停止完成通知，然后停止执行
// 上下文、注销注册表使用者并释放传输选项集。
package sock
