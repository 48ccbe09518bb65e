// Package optset 实现表驱动的传输专属选项集
//
// 传输以 Spec 列表声明自己支持的选项，Table 负责类型与长度校验、默认值
// 与存储。Table 实现 transport.OptionSet。
package optset

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// Kind 选项值类型
type Kind int

const (
	// KindInt 4 字节整数
	KindInt Kind = iota
	// KindBytes 变长字节串
	KindBytes
)

// Spec 选项声明
type Spec struct {
	ID   types.OptionID
	Name string
	Kind Kind

	// DefaultInt / DefaultBytes 默认值
	DefaultInt   int
	DefaultBytes []byte

	// Min/Max 整数取值范围，均为 0 表示不限制
	Min, Max int

	// MaxLen 字节串最大长度，0 表示不限制
	MaxLen int
}

func (s Spec) defaultValue() []byte {
	if s.Kind == KindInt {
		return types.EncodeInt(s.DefaultInt)
	}
	return append([]byte(nil), s.DefaultBytes...)
}

func (s Spec) validate(value []byte) error {
	switch s.Kind {
	case KindInt:
		v, err := types.DecodeInt(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", s.Name, transport.ErrInvalidOption)
		}
		if (s.Min != 0 || s.Max != 0) && (v < s.Min || v > s.Max) {
			return fmt.Errorf("option %s: value %d out of range [%d,%d]: %w",
				s.Name, v, s.Min, s.Max, transport.ErrInvalidOption)
		}
	case KindBytes:
		if s.MaxLen > 0 && len(value) > s.MaxLen {
			return fmt.Errorf("option %s: length %d exceeds %d: %w",
				s.Name, len(value), s.MaxLen, transport.ErrInvalidOption)
		}
	}
	return nil
}

// Table 表驱动选项集
type Table struct {
	mu        sync.RWMutex
	specs     map[types.OptionID]Spec
	values    map[types.OptionID][]byte
	destroyed bool
}

var _ transport.OptionSet = (*Table)(nil)

// New 根据声明创建选项集，所有选项初始为默认值
func New(specs ...Spec) *Table {
	t := &Table{
		specs:  make(map[types.OptionID]Spec, len(specs)),
		values: make(map[types.OptionID][]byte, len(specs)),
	}
	for _, s := range specs {
		t.specs[s.ID] = s
		t.values[s.ID] = s.defaultValue()
	}
	return t
}

// SetOption 实现 transport.OptionSet
func (t *Table) SetOption(id types.OptionID, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return transport.ErrClosed
	}
	s, ok := t.specs[id]
	if !ok {
		return transport.ErrUnsupportedOption
	}
	if err := s.validate(value); err != nil {
		return err
	}
	t.values[id] = append([]byte(nil), value...)
	return nil
}

// GetOption 实现 transport.OptionSet
func (t *Table) GetOption(id types.OptionID, buf []byte) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.destroyed {
		return 0, transport.ErrClosed
	}
	v, ok := t.values[id]
	if !ok {
		return 0, transport.ErrUnsupportedOption
	}
	copy(buf, v)
	return len(v), nil
}

// Int 读取整数选项
func (t *Table) Int(id types.OptionID) (int, error) {
	buf := make([]byte, types.IntOptionSize)
	n, err := t.GetOption(id, buf)
	if err != nil {
		return 0, err
	}
	if n != types.IntOptionSize {
		return 0, transport.ErrInvalidOption
	}
	return types.DecodeInt(buf)
}

// SetInt 设置整数选项
func (t *Table) SetInt(id types.OptionID, v int) error {
	return t.SetOption(id, types.EncodeInt(v))
}

// Bytes 读取字节串选项副本
func (t *Table) Bytes(id types.OptionID) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.destroyed {
		return nil, transport.ErrClosed
	}
	v, ok := t.values[id]
	if !ok {
		return nil, transport.ErrUnsupportedOption
	}
	return append([]byte(nil), v...), nil
}

// Destroy 实现 transport.OptionSet
func (t *Table) Destroy() {
	t.mu.Lock()
	t.destroyed = true
	t.values = nil
	t.mu.Unlock()
}
