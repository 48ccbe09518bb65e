// Package registry 实现传输注册表
//
// 注册表持有所有传输描述符，按地址中的协议名选择传输，并负责
// Init/Term 钩子的成对调用：
//
//   - 第一个使用者 Acquire 时按注册顺序调用所有 Init
//   - 最后一个使用者 Release 时按逆序调用所有 Term
//   - 所有钩子在同一把全局锁内执行，任意两个钩子不会重叠
//
// 注册表是显式构造的进程级对象，通过 fx 注入，不使用隐式全局变量。
package registry
