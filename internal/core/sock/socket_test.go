package sock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-sptransport/internal/core/endpoint"
	"github.com/dep2p/go-sptransport/internal/core/eventbus"
	"github.com/dep2p/go-sptransport/internal/core/metrics"
	"github.com/dep2p/go-sptransport/internal/core/pipe"
	"github.com/dep2p/go-sptransport/internal/core/transport/transporttest"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// ============================================================================
//                              创建
// ============================================================================

func TestNew_InitializesTransports(t *testing.T) {
	s, tr := newTestSocket(t, types.SocketPair)

	assert.Equal(t, 1, tr.Inits())
	assert.Zero(t, tr.Terms())
	assert.Equal(t, types.SocketPair, s.Type())
	assert.NotEmpty(t, s.ID())

	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 1, tr.Terms())
	t.Log("✅ 套接字创建与关闭驱动传输 Init/Term")
}

func TestNew_InvalidType(t *testing.T) {
	tr := transporttest.New("test", testTransportID)
	_, err := New(types.SocketType(999), Deps{})
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.Zero(t, tr.Inits())
}

func TestNew_RegistersCollector(t *testing.T) {
	c := metrics.NewCollector()
	s, _ := newTestSocket(t, types.SocketPush, func(d *Deps) { d.Collector = c })

	assert.Equal(t, 1, c.Len())
	require.NoError(t, s.Close(context.Background()))
	assert.Zero(t, c.Len())
}

// ============================================================================
//                              Bind / Connect
// ============================================================================

func TestBindConnect(t *testing.T) {
	s, tr := newTestSocket(t, types.SocketReq)

	bid, err := s.Bind("test://a")
	require.NoError(t, err)
	cid, err := s.Connect("test://b")
	require.NoError(t, err)
	assert.NotEqual(t, bid, cid)

	eps := s.Endpoints()
	require.Len(t, eps, 2)
	assert.Equal(t, "test://a", eps[0].Addr)
	assert.Equal(t, types.EndpointActive, eps[0].State)
	assert.Equal(t, "test://b", eps[1].Addr)

	teps := tr.Endpoints()
	require.Len(t, teps, 2)
	assert.True(t, teps[0].Bound())
	assert.False(t, teps[1].Bound())
}

func TestBind_TransportError(t *testing.T) {
	s, tr := newTestSocket(t, types.SocketRep)
	tr.FailBind(transport.ErrAddrInUse)

	_, err := s.Bind("test://a")
	assert.ErrorIs(t, err, transport.ErrAddrInUse)
	assert.Equal(t, -int(transport.EADDRINUSE), transport.ResultCode(0, err))
	assert.Empty(t, s.Endpoints())
	assert.Equal(t, int64(1), s.Stat(types.StatBindErrors))

	tr.FailConnect(transport.ECONNREFUSED)
	_, err = s.Connect("test://a")
	assert.Error(t, err)
	assert.Equal(t, int64(1), s.Stat(types.StatConnectErrors))
}

func TestConnect_TransportSkipsSetup(t *testing.T) {
	s, tr := newTestSocket(t, types.SocketReq)
	tr.SkipSetup(true)

	_, err := s.Connect("test://a")
	assert.ErrorIs(t, err, endpoint.ErrNotSetup)
	assert.ErrorIs(t, err, transport.ErrState)
	assert.Empty(t, s.Endpoints())
	assert.Equal(t, int64(1), s.Stat(types.StatConnectErrors))

	// 丢弃的端点已停止，不会留在 Created 状态
	require.NotNil(t, tr.Last())
	ep, ok := tr.Last().Endpoint().(*endpoint.Endpoint)
	require.True(t, ok)
	assert.Equal(t, types.EndpointStopped, ep.State())
	select {
	case <-ep.Done():
	default:
		t.Fatal("discarded endpoint not stopped")
	}
	drain(t, s)
	assert.Empty(t, s.Endpoints())
}

func TestConnect_UnknownScheme(t *testing.T) {
	s, _ := newTestSocket(t, types.SocketReq)

	_, err := s.Connect("carrier-pigeon://x")
	assert.ErrorIs(t, err, transport.ErrProtocolNotSupported)

	_, err = s.Connect("no-scheme")
	assert.ErrorIs(t, err, transport.ErrInvalidAddress)
}

func TestBindConnect_SerializedPerSocket(t *testing.T) {
	s, tr := newTestSocket(t, types.SocketBus)
	tr.HookDelay = 2 * time.Millisecond

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		bind := i%2 == 0
		g.Go(func() error {
			if bind {
				_, err := s.Bind("test://x")
				return err
			}
			_, err := s.Connect("test://x")
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, s.Endpoints(), 8)
	assert.Zero(t, tr.BindOverlaps(), "同一套接字的 bind/connect 不应并发")
	t.Log("✅ 同一套接字的 bind/connect 互斥")
}

func TestShutdown(t *testing.T) {
	s, tr := newTestSocket(t, types.SocketPair)

	eid := mustConnect(t, s)
	p, err := tr.Last().NewPipe(false)
	require.NoError(t, err)
	drain(t, s)
	assert.Equal(t, 1, s.PipeCount())

	require.NoError(t, s.Shutdown(eid))
	drain(t, s)

	assert.Empty(t, s.Endpoints())
	assert.Zero(t, s.PipeCount())
	assert.True(t, tr.Last().Destroyed())
	assert.Equal(t, 1, tr.Last().Stops())
	assert.Equal(t, pipe.StateStopped, p.Base().State())

	err = s.Shutdown(eid)
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestShutdown_LingeringEndpoint(t *testing.T) {
	s, tr := newTestSocket(t, types.SocketPair)
	tr.SetLinger(true)

	eid := mustConnect(t, s)
	require.NoError(t, s.Shutdown(eid))
	drain(t, s)

	eps := s.Endpoints()
	require.Len(t, eps, 1)
	assert.Equal(t, types.EndpointStopping, eps[0].State)
	assert.False(t, tr.Last().Destroyed(), "停止完成前不得销毁")

	// 重复停止不产生额外钩子调用
	require.NoError(t, s.Shutdown(eid))
	assert.Equal(t, 1, tr.Last().Stops())

	tr.Last().Finish()
	drain(t, s)
	assert.Empty(t, s.Endpoints())
	assert.True(t, tr.Last().Destroyed())
}

func TestEndpointEvents(t *testing.T) {
	bus := eventbus.NewBus()
	t.Cleanup(func() { _ = bus.Close() })
	states, err := eventbus.Subscribe[types.EvtEndpointState](bus, eventbus.BufSize(16))
	require.NoError(t, err)
	errs, err := eventbus.Subscribe[types.EvtEndpointError](bus, eventbus.BufSize(16))
	require.NoError(t, err)

	s, tr := newTestSocket(t, types.SocketPush, func(d *Deps) { d.Bus = bus })
	eid := mustConnect(t, s)

	tr.Last().Endpoint().SetError(int(transport.ECONNREFUSED))
	evt := nextEvent(t, errs.Out())
	assert.Equal(t, eid, evt.EndpointID)
	assert.Equal(t, int(transport.ECONNREFUSED), evt.Errno)
	assert.Equal(t, int64(1), s.Stat(types.StatCurrentEpErrors))

	tr.Last().Endpoint().ClearError()
	assert.True(t, nextEvent(t, errs.Out()).Cleared())
	assert.Zero(t, s.Stat(types.StatCurrentEpErrors))

	require.NoError(t, s.Shutdown(eid))
	drain(t, s)

	var seen []types.EndpointState
	for len(seen) < 4 {
		seen = append(seen, nextEvent(t, states.Out()).State)
	}
	assert.Equal(t, []types.EndpointState{
		types.EndpointActive,
		types.EndpointStopping,
		types.EndpointStopped,
		types.EndpointDestroyed,
	}, seen)
}

func mustConnect(t *testing.T, s *Socket) int {
	t.Helper()
	eid, err := s.Connect("test://peer")
	require.NoError(t, err)
	return eid
}

func nextEvent[E any](t *testing.T, ch <-chan E) E {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("等待事件超时")
		var zero E
		return zero
	}
}
