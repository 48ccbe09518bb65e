// Package aio 提供端点与管道运行所在的执行上下文
//
// Context 是一个单 goroutine 的串行执行器：同一上下文内一次只运行一个
// 步骤，因此挂在同一上下文上的状态机步骤不会相互重入。多个上下文可以
// 在不同 goroutine 上并行运行。
//
// 挂起是显式的：操作从不阻塞调用方，恢复由另一次 Post 驱动。
//
// # 使用示例
//
//	ctx := aio.New("sock-1")
//	defer ctx.Stop()
//
//	ctx.Post(func() { /* 状态机步骤 */ })
//	_ = ctx.Exec(func() { /* 同步等待执行完成 */ })
package aio
