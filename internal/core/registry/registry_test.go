package registry

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

// hookTransport 记录 Init/Term 调用并检测重叠
type hookTransport struct {
	name string
	id   int

	journal *journal
}

func (h *hookTransport) Name() string                     { return h.name }
func (h *hookTransport) ID() int                          { return h.id }
func (h *hookTransport) Bind(transport.Endpoint) error    { return nil }
func (h *hookTransport) Connect(transport.Endpoint) error { return nil }
func (h *hookTransport) Init()                            { h.journal.enter(h.name + ".init") }
func (h *hookTransport) Term()                            { h.journal.enter(h.name + ".term") }

// plainTransport 没有任何可选钩子
type plainTransport struct {
	name string
	id   int
}

func (p *plainTransport) Name() string                     { return p.name }
func (p *plainTransport) ID() int                          { return p.id }
func (p *plainTransport) Bind(transport.Endpoint) error    { return nil }
func (p *plainTransport) Connect(transport.Endpoint) error { return nil }

type journal struct {
	inside  atomic.Int32
	overlap atomic.Bool

	mu    sync.Mutex
	calls []string
}

func (j *journal) enter(call string) {
	if j.inside.Add(1) != 1 {
		j.overlap.Store(true)
	}
	time.Sleep(100 * time.Microsecond)
	j.mu.Lock()
	j.calls = append(j.calls, call)
	j.mu.Unlock()
	j.inside.Add(-1)
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

func newHooked(j *journal, names ...string) []transport.Transport {
	ts := make([]transport.Transport, 0, len(names))
	for i, n := range names {
		ts = append(ts, &hookTransport{name: n, id: -(i + 1), journal: j})
	}
	return ts
}

// ============================================================================
//                              注册与查找
// ============================================================================

func TestRegistry_RegisterDuplicates(t *testing.T) {
	r, err := New(&plainTransport{name: "tcp", id: -3})
	require.NoError(t, err)

	err = r.Register(&plainTransport{name: "tcp", id: -4})
	assert.ErrorIs(t, err, transport.ErrTransportExists)

	err = r.Register(&plainTransport{name: "ipc", id: -3})
	assert.ErrorIs(t, err, transport.ErrTransportIDExists)

	require.NoError(t, r.Register(&plainTransport{name: "ipc", id: -2}))
	names := []string{}
	for _, tr := range r.Transports() {
		names = append(names, tr.Name())
	}
	assert.Equal(t, []string{"tcp", "ipc"}, names)
}

func TestRegistry_NewRejectsDuplicates(t *testing.T) {
	_, err := New(&plainTransport{name: "a", id: 1}, &plainTransport{name: "a", id: 2})
	assert.ErrorIs(t, err, transport.ErrTransportExists)
}

func TestRegistry_Lookup(t *testing.T) {
	r, err := New(&plainTransport{name: "tcp", id: -3}, &plainTransport{name: "inproc", id: -1})
	require.NoError(t, err)

	tr, err := r.Lookup("tcp://127.0.0.1:5555")
	require.NoError(t, err)
	assert.Equal(t, "tcp", tr.Name())

	tr, err = r.Lookup("inproc://a")
	require.NoError(t, err)
	assert.Equal(t, -1, tr.ID())

	_, err = r.Lookup("udp://x")
	assert.ErrorIs(t, err, transport.ErrProtocolNotSupported)
	assert.Equal(t, int(transport.EPROTONOSUPPORT), transport.ErrnoOf(err))

	for _, bad := range []string{"", "tcp", "://x", "tcp:/x"} {
		_, err = r.Lookup(bad)
		assert.ErrorIs(t, err, transport.ErrInvalidAddress, bad)
	}

	tr, ok := r.ByID(-3)
	require.True(t, ok)
	assert.Equal(t, "tcp", tr.Name())
	_, ok = r.ByID(42)
	assert.False(t, ok)
}

// ============================================================================
//                              Init / Term
// ============================================================================

func TestRegistry_InitTermOrder(t *testing.T) {
	j := &journal{}
	r, err := New(newHooked(j, "a", "b", "c")...)
	require.NoError(t, err)

	require.NoError(t, r.Acquire())
	require.NoError(t, r.Acquire())
	assert.Equal(t, []string{"a.init", "b.init", "c.init"}, j.snapshot())
	assert.Equal(t, 2, r.Users())

	r.Release()
	assert.Len(t, j.snapshot(), 3, "仍有使用者时不终止")

	r.Release()
	assert.Equal(t, []string{
		"a.init", "b.init", "c.init",
		"c.term", "b.term", "a.term",
	}, j.snapshot())

	// 新一轮周期重新初始化
	require.NoError(t, r.Acquire())
	assert.Len(t, j.snapshot(), 9)
	r.Release()
	assert.Len(t, j.snapshot(), 12)
}

func TestRegistry_PlainTransportHasNoHooks(t *testing.T) {
	j := &journal{}
	ts := append(newHooked(j, "a"), &plainTransport{name: "plain", id: 9})
	r, err := New(ts...)
	require.NoError(t, err)

	require.NoError(t, r.Acquire())
	r.Release()
	assert.Equal(t, []string{"a.init", "a.term"}, j.snapshot())
}

func TestRegistry_RegisterWhileActive(t *testing.T) {
	j := &journal{}
	r, err := New(newHooked(j, "a")...)
	require.NoError(t, err)

	require.NoError(t, r.Acquire())
	require.NoError(t, r.Register(&hookTransport{name: "late", id: 7, journal: j}))
	assert.Equal(t, []string{"a.init", "late.init"}, j.snapshot())

	r.Release()
	assert.Equal(t, []string{"a.init", "late.init", "late.term", "a.term"}, j.snapshot())
}

func TestRegistry_ReleaseUnderflow(t *testing.T) {
	j := &journal{}
	r, err := New(newHooked(j, "a")...)
	require.NoError(t, err)

	r.Release()
	assert.Empty(t, j.snapshot())
	assert.Equal(t, 0, r.Users())
}

func TestRegistry_InitTermNeverOverlap(t *testing.T) {
	j := &journal{}
	r, err := New(newHooked(j, "a", "b")...)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for k := 0; k < 20; k++ {
				if err := r.Acquire(); err != nil {
					return err
				}
				r.Release()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.False(t, j.overlap.Load(), "Init/Term 钩子发生重叠")
	assert.Equal(t, 0, r.Users())

	// 每个周期 init 与 term 成对
	calls := j.snapshot()
	inits, terms := 0, 0
	for _, c := range calls {
		switch c {
		case "a.init", "b.init":
			inits++
		case "a.term", "b.term":
			terms++
		}
	}
	assert.Equal(t, inits, terms)
	assert.NotZero(t, inits)
}

func TestRegistry_CloseForcesTerm(t *testing.T) {
	j := &journal{}
	r, err := New(newHooked(j, "a")...)
	require.NoError(t, err)

	require.NoError(t, r.Acquire())
	require.NoError(t, r.Close())
	assert.Equal(t, []string{"a.init", "a.term"}, j.snapshot())

	assert.ErrorIs(t, r.Acquire(), ErrClosed)
	assert.ErrorIs(t, r.Acquire(), transport.ErrTerminating)
	assert.ErrorIs(t, r.Register(&plainTransport{name: "x", id: 1}), ErrClosed)

	// 关闭后的 Release 不会再次终止
	r.Release()
	require.NoError(t, r.Close())
	assert.Len(t, j.snapshot(), 2)
}
