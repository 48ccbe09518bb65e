package sock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/eventbus"
	"github.com/dep2p/go-sptransport/internal/core/registry"
	"github.com/dep2p/go-sptransport/internal/core/transport/transporttest"
	"github.com/dep2p/go-sptransport/pkg/interfaces/transport"
	"github.com/dep2p/go-sptransport/pkg/types"
)

func TestFactory_TracksSockets(t *testing.T) {
	tr := transporttest.New("test", testTransportID)
	reg, err := registry.New(tr)
	require.NoError(t, err)
	defer reg.Close()

	f := NewFactory(Deps{Registry: reg, Config: config.DefaultSocketConfig()})
	a, err := f.NewSocket(types.SocketReq)
	require.NoError(t, err)
	_, err = f.NewSocket(types.SocketRep)
	require.NoError(t, err)
	assert.Len(t, f.Sockets(), 2)
	assert.Equal(t, 1, tr.Inits(), "多个套接字只初始化一次")

	require.NoError(t, a.Close(context.Background()))
	assert.Len(t, f.Sockets(), 1)
	assert.Zero(t, tr.Terms())

	require.NoError(t, f.Close(context.Background()))
	assert.Empty(t, f.Sockets())
	assert.Equal(t, 1, tr.Terms())
}

func TestModule_Lifecycle(t *testing.T) {
	tr := transporttest.New("test", testTransportID)
	var f *Factory

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		fx.Provide(fx.Annotate(
			func() transport.Transport { return tr },
			fx.ResultTags(`group:"transports"`),
		)),
		registry.Module(),
		eventbus.Module(),
		Module(),
		fx.Populate(&f),
	)
	app.RequireStart()

	s, err := f.NewSocket(types.SocketPair)
	require.NoError(t, err)
	_, err = s.Bind("test://a")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Inits())

	app.RequireStop()
	assert.Empty(t, f.Sockets())
	assert.True(t, tr.Last().Destroyed())
	assert.Equal(t, 1, tr.Terms())
	t.Log("✅ 应用停止时关闭所有套接字")
}
