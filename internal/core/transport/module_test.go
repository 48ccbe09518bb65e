package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/internal/core/registry"
	"github.com/dep2p/go-sptransport/internal/core/transport/inproc"
	transportif "github.com/dep2p/go-sptransport/pkg/interfaces/transport"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.True(t, cfg.EnableInproc, "进程内传输应该默认启用")
	assert.Zero(t, cfg.Inproc.MaxConnections)

	t.Log("✅ NewConfig 返回正确的默认值")
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, NewConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Transport = cfg.Transport.WithInproc(false)
	cfg.Transport.Inproc.MaxConnections = 3

	got := ConfigFromUnified(cfg)
	assert.False(t, got.EnableInproc)
	assert.Equal(t, 3, got.Inproc.MaxConnections)
}

func TestTransportManager(t *testing.T) {
	tm := NewTransportManager(NewConfig())
	require.Len(t, tm.GetTransports(), 1)
	assert.Equal(t, inproc.Name, tm.GetTransports()[0].Name())
	assert.NotNil(t, tm.Inproc())

	tm = NewTransportManager(Config{})
	assert.Empty(t, tm.GetTransports())
	assert.Nil(t, tm.Inproc())
}

func TestModule_ProvidesToRegistry(t *testing.T) {
	var reg transportif.Registry

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		registry.Module(),
		fx.Populate(&reg),
	)
	app.RequireStart()
	defer app.RequireStop()

	tr, err := reg.Lookup("inproc://svc")
	require.NoError(t, err)
	assert.Equal(t, inproc.ID, tr.ID())

	t.Log("✅ 内置传输经 transports 组注册")
}

func TestModule_InprocDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport = cfg.Transport.WithInproc(false)
	var reg transportif.Registry

	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		registry.Module(),
		fx.Populate(&reg),
	)
	app.RequireStart()
	defer app.RequireStop()

	_, err := reg.Lookup("inproc://svc")
	assert.ErrorIs(t, err, transportif.ErrProtocolNotSupported)
}
