// Package lib 包含与传输边界无关的通用工具库
//
//   - log: 基于 slog 的分级日志封装
//   - envelope: 消息头部与正文的线格式拆帧
package lib
