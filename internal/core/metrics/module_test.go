package metrics

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-sptransport/config"
	"github.com/dep2p/go-sptransport/pkg/types"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

func TestModule_RegistersCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	var c *Collector

	app := fxtest.New(t,
		fx.NopLogger,
		Module,
		fx.Provide(func() prometheus.Registerer { return reg }),
		fx.Populate(&c),
	)
	app.RequireStart()

	require.NotNil(t, c)
	c.Register("s1", types.SocketPair, NewStats(clock.New()))
	n, err := testutil.GatherAndCount(reg, "sptransport_sockets")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	app.RequireStop()

	// 停止后已注销，可以再次注册
	assert.NoError(t, reg.Register(c))
}

func TestModule_Disabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false

	app := fxtest.New(t,
		fx.NopLogger,
		Module,
		fx.Supply(cfg),
		fx.Provide(func() prometheus.Registerer { return reg }),
	)
	defer app.RequireStart().RequireStop()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestModule_WithoutRegisterer(t *testing.T) {
	var c *Collector
	app := fxtest.New(t,
		fx.NopLogger,
		Module,
		fx.Populate(&c),
	)
	defer app.RequireStart().RequireStop()
	assert.NotNil(t, c)
}
