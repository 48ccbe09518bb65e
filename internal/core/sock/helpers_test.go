package sock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/registry"
	"github.com/dep2p/go-sptransport/internal/core/transport/transporttest"
	"github.com/dep2p/go-sptransport/pkg/types"
)

const testTransportID = -7

func newTestSocket(t *testing.T, typ types.SocketType, opts ...func(*Deps)) (*Socket, *transporttest.Transport) {
	t.Helper()

	tr := transporttest.New("test", testTransportID)
	reg, err := registry.New(tr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	deps := Deps{Registry: reg, Config: config.DefaultSocketConfig()}
	for _, o := range opts {
		o(&deps)
	}
	s, err := New(typ, deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, tr
}

// drain 等待执行上下文中已排队的步骤执行完
func drain(t *testing.T, s *Socket) {
	t.Helper()
	require.NoError(t, s.actx.Exec(func() {}))
}

// connectPipe 连接并在新端点上启动一条管道
func connectPipe(t *testing.T, s *Socket, tr *transporttest.Transport, parsed bool) *transporttest.Pipe {
	t.Helper()
	_, err := s.Connect("test://peer")
	require.NoError(t, err)
	p, err := tr.Last().NewPipe(parsed)
	require.NoError(t, err)
	drain(t, s)
	return p
}
