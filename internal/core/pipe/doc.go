// Package pipe 实现管道状态机
//
// 管道代表一条连接：严格有序、可双向的消息流。传输为每条连接创建一个
// Pipe，实现 transport.PipeOps 提供真正的收发；Pipe 负责流控与生命周期。
//
// # 状态
//
// 整体状态 Init → Started → Stopped，连接级错误后进入 Failed。
// 启动后两个方向各自是一个子状态机。出方向从 Flowing 开始；入方向从
// Released 开始，传输第一次报告 Received 时才可读。
//
//	Flowing ──Send/Recv──▶ Busy ──返回无 RELEASE──▶ Flowing
//	                         │
//	                         ├──调用期间 Sent/Received──▶ Done ──返回──▶ Flowing
//	                         │
//	                         └──返回 RELEASE──▶ Released ──Sent/Received──▶ Flowing（向核心投递事件）
//
// Released 状态下核心不会再调用该方向的操作，直到传输报告恢复。
// 每个方向有一个待投递事件槽，同一方向最多排队一个恢复事件。
//
// # 并发
//
// 核心侧的 Send/Recv 在套接字执行上下文中调用；传输可以从任意 goroutine
// 调用 Sent/Received/Stop。状态由互斥锁保护，锁不会跨越对传输的调用。
package pipe
