package metrics

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-sptransport/pkg/types"
)

func TestStats_AddGet(t *testing.T) {
	s := NewStats(clock.NewMock())

	assert.True(t, s.Add(types.StatMessagesSent, 1))
	assert.True(t, s.Add(types.StatMessagesSent, 2))
	assert.True(t, s.Add(types.StatCurrentConnections, 1))
	assert.True(t, s.Add(types.StatCurrentConnections, -1))
	assert.False(t, s.Add(types.StatName(999), 1))

	assert.Equal(t, int64(3), s.Get(types.StatMessagesSent))
	assert.Equal(t, int64(0), s.Get(types.StatCurrentConnections))
	assert.Equal(t, int64(0), s.Get(types.StatName(999)))

	snap := s.Snapshot()
	assert.Len(t, snap.Values, len(types.AllStats()))
	assert.Equal(t, int64(3), snap.Get(types.StatMessagesSent))
}

func TestStats_ConcurrentIncrements(t *testing.T) {
	s := NewStats(clock.New())

	const (
		workers = 32
		ops     = 500
	)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < ops; j++ {
				s.Add(types.StatMessagesReceived, 1)
				s.Add(types.StatBytesReceived, 3)
				s.Add(types.StatCurrentConnections, 1)
				s.Add(types.StatCurrentConnections, -1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(workers*ops), s.Get(types.StatMessagesReceived))
	assert.Equal(t, int64(workers*ops*3), s.Get(types.StatBytesReceived))
	assert.Equal(t, int64(0), s.Get(types.StatCurrentConnections))
	t.Log("✅ 并发累加无丢失")
}

func TestStats_ByteRates(t *testing.T) {
	clk := clock.NewMock()
	s := NewStats(clk)

	s.Add(types.StatBytesSent, 600)
	s.Add(types.StatBytesReceived, 1200)

	snap := s.Snapshot()
	assert.InDelta(t, 10.0, snap.RateOut, 0.001)
	assert.InDelta(t, 20.0, snap.RateIn, 0.001)

	clk.Add(2 * time.Minute)
	snap = s.Snapshot()
	assert.Zero(t, snap.RateOut)
	assert.Equal(t, int64(600), snap.Get(types.StatBytesSent), "累计值不随窗口衰减")
}
