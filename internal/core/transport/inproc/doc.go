// Package inproc 实现进程内传输
//
// 地址形如 "inproc://name"。同一 Transport 实例内，bind 端点按名称登记，
// connect 端点在绑定方出现时建立会话；绑定方离开后连接方保持等待，
// 新的绑定方出现时自动重连。
//
// 每个会话由两个半边组成，各持有一条管道。消息以结构体直接交给对端
// 半边的接收队列，Recv 返回 PARSED，核心跳过信封拆帧。接收队列按接收方
// RCVBUF 字节数限流：队列满时发送方收到 RELEASE，直到接收方取走消息。
package inproc
