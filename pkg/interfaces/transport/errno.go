package transport

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              错误码
// ============================================================================

// Errno 传输边界上的错误码
//
// 所有可失败操作通过返回值传递错误；跨越边界的错误统一映射为 Errno，
// 套接字核心只关心错误码，不关心传输内部细节。Errno 实现 error，
// 可以用 errors.Is 比较，也可以被 fmt.Errorf("...: %w") 包装。
type Errno int

// 错误码取值与 POSIX 保持一致，ETERM/EFSM 为库自定义值
const (
	EIO             Errno = 5
	EBADF           Errno = 9
	EAGAIN          Errno = 11
	ENOMEM          Errno = 12
	EINVAL          Errno = 22
	ENOPROTOOPT     Errno = 92
	EPROTONOSUPPORT Errno = 93
	ENOTSUP         Errno = 95
	EADDRINUSE      Errno = 98
	EADDRNOTAVAIL   Errno = 99
	ECONNRESET      Errno = 104
	EISCONN         Errno = 106
	ETIMEDOUT       Errno = 110
	ECONNREFUSED    Errno = 111
	ETERM           Errno = 156384765
	EFSM            Errno = 156384766
)

var errnoText = map[Errno]string{
	EIO:             "input/output error",
	EBADF:           "bad file descriptor",
	EAGAIN:          "resource temporarily unavailable",
	ENOMEM:          "cannot allocate memory",
	EINVAL:          "invalid argument",
	ENOPROTOOPT:     "protocol not available",
	EPROTONOSUPPORT: "protocol not supported",
	ENOTSUP:         "operation not supported",
	EADDRINUSE:      "address already in use",
	EADDRNOTAVAIL:   "cannot assign requested address",
	ECONNRESET:      "connection reset by peer",
	EISCONN:         "transport endpoint is already connected",
	ETIMEDOUT:       "connection timed out",
	ECONNREFUSED:    "connection refused",
	ETERM:           "library is terminating",
	EFSM:            "operation cannot be performed in this state",
}

// Error 实现 error 接口
func (e Errno) Error() string {
	if s, ok := errnoText[e]; ok {
		return s
	}
	return fmt.Sprintf("errno %d", int(e))
}

// 常用错误别名
var (
	// ErrUnsupportedOption 未知选项
	ErrUnsupportedOption error = ENOPROTOOPT

	// ErrInvalidOption 选项值格式错误
	ErrInvalidOption error = EINVAL

	// ErrInvalidAddress 地址格式错误
	ErrInvalidAddress error = EINVAL

	// ErrProtocolNotSupported 未注册的传输协议
	ErrProtocolNotSupported error = EPROTONOSUPPORT

	// ErrAddrInUse 地址已被占用
	ErrAddrInUse error = EADDRINUSE

	// ErrConnReset 连接被重置
	ErrConnReset error = ECONNRESET

	// ErrAlreadyConnected 套接字不接受更多管道
	ErrAlreadyConnected error = EISCONN

	// ErrState 状态机不允许该操作
	ErrState error = EFSM

	// ErrClosed 对象已关闭
	ErrClosed error = EBADF

	// ErrTimeout 操作超时
	ErrTimeout error = ETIMEDOUT

	// ErrWouldBlock 非阻塞操作无法立即完成
	ErrWouldBlock error = EAGAIN

	// ErrTerminating 库正在终止
	ErrTerminating error = ETERM
)

// ErrnoOf 返回 err 对应的应用可见错误码
//
// nil 返回 0；未映射的错误返回 EIO。
func ErrnoOf(err error) int {
	if err == nil {
		return 0
	}
	var e Errno
	if errors.As(err, &e) {
		return int(e)
	}
	return int(EIO)
}

// ResultCode 将管道操作结果编码为整数
//
// 负数为错误码，非负数为标志位掩码 {RELEASE=1, PARSED=2}。
func ResultCode(flags Flags, err error) int {
	if err != nil {
		return -ErrnoOf(err)
	}
	return int(flags)
}

// DecodeResult 解码 ResultCode 产生的整数
func DecodeResult(code int) (Flags, error) {
	if code < 0 {
		return 0, Errno(-code)
	}
	return Flags(code), nil
}
