// Package transport 汇集内置传输
//
// TransportManager 按配置创建内置传输，并通过 Fx 的 "transports" 组交给
// 注册表。具体传输实现在子包中：
//
//   - inproc：进程内传输，地址形如 inproc://name
//   - transporttest：可编排的测试传输
//
// 第三方传输只需实现 pkg/interfaces/transport.Transport，并以同一个组标签
// 提供即可被注册。
package transport
