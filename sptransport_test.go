package sptransport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/transport/transporttest"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func startLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	ctx := testContext(t)
	lib, err := Start(ctx, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close(context.Background()) })
	return lib
}

// ============================================================================
//                              生命周期测试
// ============================================================================

func TestLibrary_Lifecycle(t *testing.T) {
	ctx := testContext(t)

	lib, err := New()
	require.NoError(t, err)

	_, err = lib.NewSocket(Pair)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, lib.Start(ctx))
	assert.ErrorIs(t, lib.Start(ctx), ErrAlreadyStarted)
	assert.Equal(t, 0, lib.registry.Users())

	_, err = lib.NewSocket(Pair)
	require.NoError(t, err)
	assert.Equal(t, 1, lib.registry.Users())

	require.NoError(t, lib.Close(ctx))
	assert.NoError(t, lib.Close(ctx))
	assert.Equal(t, 0, lib.registry.Users())

	_, err = lib.NewSocket(Pair)
	assert.ErrorIs(t, err, ErrLibraryClosed)
	assert.ErrorIs(t, lib.Start(ctx), ErrLibraryClosed)
	t.Log("✅ 库生命周期正确")
}

func TestLibrary_CloseWithoutStart(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)
	require.NoError(t, lib.Close(context.Background()))
	assert.ErrorIs(t, lib.Start(context.Background()), ErrLibraryClosed)
}

func TestLibrary_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Log.Level = "verbose"
	_, err := New(WithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")

	_, err = New(WithConfig(nil))
	assert.Error(t, err)

	_, err = New(WithTransports(nil))
	assert.Error(t, err)

	_, err = New(WithSocketDefaults(config.DefaultSocketConfig().WithBuffers(-1, 0)))
	assert.Error(t, err)
}

func TestLibrary_ConfigFile(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Socket = cfg.Socket.WithLinger(250 * time.Millisecond)
	data, err := cfg.ToJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sptransport.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	lib := startLibrary(t, WithConfigFile(path))
	assert.Equal(t, 250*time.Millisecond, lib.Config().Socket.Linger.Duration())

	_, err = New(WithConfigFile(filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, err)
}

// ============================================================================
//                              传输测试
// ============================================================================

func TestLibrary_InprocRoundTrip(t *testing.T) {
	lib := startLibrary(t)
	ctx := testContext(t)

	assert.Equal(t, []string{"inproc"}, lib.Transports())

	pull, err := lib.NewSocket(Pull)
	require.NoError(t, err)
	push, err := lib.NewSocket(Push)
	require.NoError(t, err)

	_, err = pull.Bind("inproc://round-trip")
	require.NoError(t, err)
	_, err = push.Connect("inproc://round-trip")
	require.NoError(t, err)

	require.NoError(t, push.Send(ctx, NewMessage([]byte("hello"))))
	msg, err := pull.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(msg.Body))
	assert.Len(t, lib.Sockets(), 2)

	require.NoError(t, push.Close(ctx))
	assert.Len(t, lib.Sockets(), 1)
	t.Log("✅ inproc 收发成功")
}

func TestLibrary_InprocDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport = cfg.Transport.WithInproc(false)
	lib := startLibrary(t, WithConfig(cfg))

	assert.Empty(t, lib.Transports())
	s, err := lib.NewSocket(Pair)
	require.NoError(t, err)
	_, err = s.Bind("inproc://nowhere")
	assert.ErrorIs(t, err, transport.ErrProtocolNotSupported)
}

func TestLibrary_CustomTransport(t *testing.T) {
	tr := transporttest.New("test", -7)
	lib := startLibrary(t, WithTransports(tr))

	assert.ElementsMatch(t, []string{"inproc", "test"}, lib.Transports())
	assert.Equal(t, 0, tr.Inits())

	s, err := lib.NewSocket(Pair)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Inits())
	_, err = s.Connect("test://peer")
	require.NoError(t, err)
	require.Len(t, tr.Endpoints(), 1)

	require.NoError(t, lib.Close(testContext(t)))
	assert.Equal(t, 1, tr.Terms())
	select {
	case <-s.Closed():
	default:
		t.Fatal("socket not closed by library")
	}
}

func TestLibrary_DuplicateTransport(t *testing.T) {
	_, err := New(WithTransports(transporttest.New("inproc", -9)))
	assert.Error(t, err)
}

// ============================================================================
//                              监控与指标测试
// ============================================================================

func TestLibrary_Subscribe(t *testing.T) {
	lib := startLibrary(t)

	sub, err := Subscribe[EvtEndpointState](lib)
	require.NoError(t, err)
	defer sub.Close()

	s, err := lib.NewSocket(Pub)
	require.NoError(t, err)
	eid, err := s.Bind("inproc://events")
	require.NoError(t, err)

	select {
	case evt := <-sub.Out():
		assert.Equal(t, s.ID(), evt.SocketID)
		assert.Equal(t, eid, evt.EndpointID)
		assert.Equal(t, "inproc://events", evt.Addr)
	case <-time.After(5 * time.Second):
		t.Fatal("no endpoint event")
	}
}

func TestLibrary_SubscribeNotStarted(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)
	_, err = Subscribe[EvtPipe](lib)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestLibrary_Prometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	lib := startLibrary(t, WithPrometheus(reg))
	require.NotNil(t, lib.Collector())

	_, err := lib.NewSocket(Bus)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "sptransport_sockets")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLibrary_MetricsDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false
	lib := startLibrary(t, WithConfig(cfg))
	assert.Nil(t, lib.Collector())
}

func TestLibrary_MockClockLinger(t *testing.T) {
	clk := clock.NewMock()
	cfg := config.NewConfig()
	cfg.Socket = cfg.Socket.WithLinger(time.Second)
	tr := transporttest.New("test", -7)
	lib := startLibrary(t, WithConfig(cfg), WithClock(clk), WithTransports(tr))

	s, err := lib.NewSocket(Pair)
	require.NoError(t, err)
	tr.SetLinger(true)
	_, err = s.Connect("test://slow")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Close(context.Background()) }()

	require.Eventually(t, func() bool {
		clk.Add(500 * time.Millisecond)
		select {
		case err := <-done:
			done <- err
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Error(t, <-done)
}

func TestLibrary_FxOptions(t *testing.T) {
	var invoked bool
	startLibrary(t, WithFxOptions(fx.Invoke(func(r transport.Registry) {
		invoked = r != nil
	})))
	assert.True(t, invoked)
}

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GitCommit)
}
