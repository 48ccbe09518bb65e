// Package sptransport 提供可扩展协议（SP）套接字的传输插件边界
//
// 套接字核心按地址协议名选择传输，传输通过三个对象与核心交互：
//
//   - Transport：传输描述符，init/term 钩子、bind/connect 工厂与选项集
//   - Endpoint：每次 bind/connect 创建一个，异步停止，停止完成后销毁
//   - Pipe：每条连接一个，出入两个方向各自带 RELEASE 流控
//
// # 快速开始
//
//	lib, err := sptransport.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	defer lib.Close(ctx)
//
//	pull, _ := lib.NewSocket(sptransport.Pull)
//	push, _ := lib.NewSocket(sptransport.Push)
//	pull.Bind("inproc://jobs")
//	push.Connect("inproc://jobs")
//
//	push.Send(ctx, sptransport.NewMessage([]byte("hello")))
//	msg, _ := pull.Recv(ctx)
//
// # 自定义传输
//
// 实现 pkg/interfaces/transport.Transport 并通过 WithTransports 注册。
// 需要初始化或专属选项的传输再实现 Initializer、Terminator 或
// OptionSetProvider。
//
// # 文件组织
//
//	sptransport/
//	├── sptransport.go   # Library 结构、New/Start、Close
//	├── options.go       # 用户配置选项
//	├── fx.go            # Fx 应用组装
//	├── types.go         # 公共类型别名
//	└── errors.go        # 公共错误
package sptransport
