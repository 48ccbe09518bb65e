package transport

import "strings"

// Flags 管道 Send/Recv 返回的标志位集合
type Flags uint8

const (
	// FlagRelease 本方向暂停：在传输调用 Sent/Received 恢复之前，
	// 核心不会再调用该方向的操作
	FlagRelease Flags = 1 << iota

	// FlagParsed 收到的消息已拆分为头部和正文，核心跳过信封拆帧
	//
	// 仅由能够直接传递结构体的传输使用（如进程内传输）。
	FlagParsed
)

// Has 判断是否包含指定标志
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// With 返回加上 x 的标志集合
func (f Flags) With(x Flags) Flags {
	return f | x
}

// Without 返回去掉 x 的标志集合
func (f Flags) Without(x Flags) Flags {
	return f &^ x
}

// String 返回可读表示
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(FlagRelease) {
		parts = append(parts, "release")
	}
	if f.Has(FlagParsed) {
		parts = append(parts, "parsed")
	}
	if rest := f.Without(FlagRelease | FlagParsed); rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}
