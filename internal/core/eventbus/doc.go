// Package eventbus 实现进程内监控事件总线
//
// 套接字核心通过总线发布端点与管道的监控事件（types.EvtEndpointError、
// types.EvtEndpointState、types.EvtPipe）。总线按事件类型分节点，
// 使用泛型提供类型安全的订阅与发射：
//
//	bus := eventbus.NewBus()
//
//	sub, _ := eventbus.Subscribe[types.EvtEndpointError](bus, eventbus.BufSize(64))
//	defer sub.Close()
//
//	em, _ := eventbus.NewEmitter[types.EvtEndpointError](bus)
//	defer em.Close()
//	em.Emit(types.EvtEndpointError{...})
//
// 发射从不阻塞：订阅者缓冲区满时事件被丢弃并计数，监控路径不能
// 反压数据路径。
//
// # 并发安全
//
// 节点表由 RWMutex 保护，每个节点有独立的锁；发射器引用计数为原子操作。
package eventbus
