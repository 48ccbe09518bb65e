// Package metrics 提供套接字统计
//
// 每个套接字持有一个 Stats：一组按 types.StatName 索引的原子计数器，
// 多个管道可以并发更新。字节计数同时驱动滑动窗口速率计算器。
//
// Collector 把所有已登记套接字的统计导出为 Prometheus 指标：
//
//	c := metrics.NewCollector()
//	prometheus.MustRegister(c)
//
//	stats := metrics.NewStats(clock.New())
//	c.Register(sockID, types.SocketPair, stats)
//	defer c.Unregister(sockID)
//
// 计数类统计（1xx、3xx）导出为 counter，瞬时类统计（2xx）导出为 gauge。
//
// # 并发安全
//
// Stats 的所有方法都是并发安全的；Collector 内部有锁保护。
package metrics
