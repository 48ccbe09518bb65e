package sock

import (
	"fmt"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// domainSP 套接字域，只读
const domainSP = 1

// maxSocketName 套接字名称最大长度
const maxSocketName = 63

// socketOptions 套接字层选项
//
// 时长类选项以毫秒整数读写，负值表示无限。
type socketOptions struct {
	linger          config.Duration
	sndBuf          int
	rcvBuf          int
	sndTimeo        config.Duration
	rcvTimeo        config.Duration
	reconnectIvl    config.Duration
	reconnectIvlMax config.Duration
	sndPrio         int
	rcvPrio         int
	ipv4Only        bool
	rcvMaxSize      int
	maxTTL          int
	name            string
}

func optionsFromConfig(c config.SocketConfig, name string) socketOptions {
	return socketOptions{
		linger:          c.Linger,
		sndBuf:          c.SndBuf,
		rcvBuf:          c.RcvBuf,
		sndTimeo:        c.SndTimeout,
		rcvTimeo:        c.RcvTimeout,
		reconnectIvl:    c.ReconnectIvl,
		reconnectIvlMax: c.ReconnectIvlMax,
		sndPrio:         c.SndPrio,
		rcvPrio:         c.RcvPrio,
		ipv4Only:        c.IPv4Only,
		rcvMaxSize:      c.RcvMaxSize,
		maxTTL:          c.MaxTTL,
		name:            name,
	}
}

func (o *socketOptions) endpointOptions() types.EndpointOptions {
	return types.EndpointOptions{
		SndPrio:  o.sndPrio,
		RcvPrio:  o.rcvPrio,
		IPv4Only: o.ipv4Only,
	}
}

// set 写入套接字层选项
func (o *socketOptions) set(id types.OptionID, value []byte) error {
	if id == types.OptSocketName {
		if len(value) > maxSocketName {
			return fmt.Errorf("socket name longer than %d: %w", maxSocketName, transport.ErrInvalidOption)
		}
		o.name = string(value)
		return nil
	}
	if id == types.OptDomain || id == types.OptProtocol {
		return ErrReadOnlyOption
	}

	v, err := types.DecodeInt(value)
	if err != nil {
		return fmt.Errorf("option %d: %w", id, transport.ErrInvalidOption)
	}

	inRange := func(lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("option %d: value %d out of range [%d,%d]: %w", id, v, lo, hi, transport.ErrInvalidOption)
		}
		return nil
	}
	positive := func() error {
		if v <= 0 {
			return fmt.Errorf("option %d: value must be positive: %w", id, transport.ErrInvalidOption)
		}
		return nil
	}

	switch id {
	case types.OptLinger:
		o.linger = config.FromMilliseconds(v)
	case types.OptSndBuf:
		if err := positive(); err != nil {
			return err
		}
		o.sndBuf = v
	case types.OptRcvBuf:
		if err := positive(); err != nil {
			return err
		}
		o.rcvBuf = v
	case types.OptSndTimeo:
		o.sndTimeo = config.FromMilliseconds(v)
	case types.OptRcvTimeo:
		o.rcvTimeo = config.FromMilliseconds(v)
	case types.OptReconnectIvl:
		if err := inRange(0, 1<<30); err != nil {
			return err
		}
		o.reconnectIvl = config.FromMilliseconds(v)
	case types.OptReconnectIvlMax:
		if err := inRange(0, 1<<30); err != nil {
			return err
		}
		o.reconnectIvlMax = config.FromMilliseconds(v)
	case types.OptSndPrio:
		if err := inRange(config.MinPriority, config.MaxPriority); err != nil {
			return err
		}
		o.sndPrio = v
	case types.OptRcvPrio:
		if err := inRange(config.MinPriority, config.MaxPriority); err != nil {
			return err
		}
		o.rcvPrio = v
	case types.OptIPv4Only:
		if err := inRange(0, 1); err != nil {
			return err
		}
		o.ipv4Only = v == 1
	case types.OptRcvMaxSize:
		if v < -1 {
			return fmt.Errorf("option %d: %w", id, transport.ErrInvalidOption)
		}
		o.rcvMaxSize = v
	case types.OptMaxTTL:
		if err := inRange(1, 255); err != nil {
			return err
		}
		o.maxTTL = v
	default:
		return fmt.Errorf("socket option %d: %w", id, transport.ErrUnsupportedOption)
	}
	return nil
}

// get 读取套接字层选项的编码值
func (o *socketOptions) get(id types.OptionID, typ types.SocketType) ([]byte, error) {
	var v int
	switch id {
	case types.OptSocketName:
		return []byte(o.name), nil
	case types.OptDomain:
		v = domainSP
	case types.OptProtocol:
		v = int(typ)
	case types.OptLinger:
		v = o.linger.Milliseconds()
	case types.OptSndBuf:
		v = o.sndBuf
	case types.OptRcvBuf:
		v = o.rcvBuf
	case types.OptSndTimeo:
		v = o.sndTimeo.Milliseconds()
	case types.OptRcvTimeo:
		v = o.rcvTimeo.Milliseconds()
	case types.OptReconnectIvl:
		v = o.reconnectIvl.Milliseconds()
	case types.OptReconnectIvlMax:
		v = o.reconnectIvlMax.Milliseconds()
	case types.OptSndPrio:
		v = o.sndPrio
	case types.OptRcvPrio:
		v = o.rcvPrio
	case types.OptIPv4Only:
		if o.ipv4Only {
			v = 1
		}
	case types.OptRcvMaxSize:
		v = o.rcvMaxSize
	case types.OptMaxTTL:
		v = o.maxTTL
	default:
		return nil, fmt.Errorf("socket option %d: %w", id, transport.ErrUnsupportedOption)
	}
	return types.EncodeInt(v), nil
}
