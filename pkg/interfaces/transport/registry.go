package transport

import (
	"strings"
)

// ============================================================================
//                              Registry 接口
// ============================================================================

// Registry 传输注册表
//
// 注册表是进程级状态：显式构造，显式关闭。Init/Term 钩子在注册表的
// 全局临界区内成对调用。
type Registry interface {
	// Register 注册传输；名称或编号重复时返回错误
	Register(t Transport) error

	// Lookup 根据地址中的协议选择传输
	Lookup(addr string) (Transport, error)

	// ByID 根据编号查找传输
	ByID(id int) (Transport, bool)

	// Transports 返回按注册顺序排列的传输
	Transports() []Transport

	// Acquire 登记一个库使用者；首次登记时初始化所有传输
	Acquire() error

	// Release 注销一个库使用者；最后一个注销时终止所有传输
	Release()

	// Close 关闭注册表
	Close() error
}

// 注册表错误
var (
	// ErrTransportExists 同名传输已注册
	ErrTransportExists = registryError("transport already registered with this name")

	// ErrTransportIDExists 同编号传输已注册
	ErrTransportIDExists = registryError("transport already registered with this id")

	// ErrRegistryClosed 注册表已关闭
	ErrRegistryClosed = registryError("transport registry closed")
)

// registryError 注册表错误类型
type registryError string

func (e registryError) Error() string {
	return string(e)
}

// SplitAddr 拆分 "scheme://rest" 形式的地址
//
// 协议名之后的部分对核心不透明，原样交给传输。
func SplitAddr(addr string) (scheme, rest string, err error) {
	i := strings.Index(addr, "://")
	if i <= 0 {
		return "", "", ErrInvalidAddress
	}
	return addr[:i], addr[i+3:], nil
}
