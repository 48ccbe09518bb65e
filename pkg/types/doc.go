// Package types 定义 sptransport 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在套接字核心、端点、管道与传输之间传递数据。
//
// # 文件组织
//
//   - socktype.go - SocketType 及对端兼容矩阵
//   - option.go   - OptionLevel, OptionID, 整数选项编解码
//   - stats.go    - StatName 统计项
//   - message.go  - Message 消息（头部 + 正文）
//   - events.go   - 监控事件
package types
