package sock

import (
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-sptransport/internal/core/eventbus"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// emitters 监控事件发射器，总线为空时所有方法为空操作
type emitters struct {
	epErr   *eventbus.Emitter[types.EvtEndpointError]
	epState *eventbus.Emitter[types.EvtEndpointState]
	pipe    *eventbus.Emitter[types.EvtPipe]
}

func newEmitters(bus *eventbus.Bus) (*emitters, error) {
	if bus == nil {
		return nil, nil
	}
	var (
		ev  emitters
		err error
	)
	if ev.epErr, err = eventbus.NewEmitter[types.EvtEndpointError](bus); err != nil {
		return nil, err
	}
	if ev.epState, err = eventbus.NewEmitter[types.EvtEndpointState](bus); err != nil {
		_ = ev.epErr.Close()
		return nil, err
	}
	if ev.pipe, err = eventbus.NewEmitter[types.EvtPipe](bus); err != nil {
		_ = ev.epErr.Close()
		_ = ev.epState.Close()
		return nil, err
	}
	return &ev, nil
}

func (e *emitters) endpointError(sockID string, ep transport.Endpoint, errno int) {
	if e == nil {
		return
	}
	_ = e.epErr.Emit(types.EvtEndpointError{
		SocketID:   sockID,
		EndpointID: ep.ID(),
		Addr:       ep.Addr(),
		Errno:      errno,
		Time:       time.Now(),
	})
}

func (e *emitters) endpointState(sockID string, ep transport.Endpoint, state types.EndpointState) {
	if e == nil {
		return
	}
	_ = e.epState.Emit(types.EvtEndpointState{
		SocketID:   sockID,
		EndpointID: ep.ID(),
		Addr:       ep.Addr(),
		State:      state,
		Time:       time.Now(),
	})
}

func (e *emitters) pipeChanged(sockID string, eid int, attached bool) {
	if e == nil {
		return
	}
	_ = e.pipe.Emit(types.EvtPipe{
		SocketID:   sockID,
		EndpointID: eid,
		Attached:   attached,
		Time:       time.Now(),
	})
}

func (e *emitters) close() error {
	if e == nil {
		return nil
	}
	return multierr.Combine(e.epErr.Close(), e.epState.Close(), e.pipe.Close())
}
