package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
//                              套接字类型
// ============================================================================

func TestSocketType_PeerTableSymmetric(t *testing.T) {
	for _, a := range AllSocketTypes() {
		require.True(t, a.Valid(), a.String())
		for _, b := range AllSocketTypes() {
			assert.Equal(t, a.IsPeer(b), b.IsPeer(a), "%s/%s", a, b)
		}
	}
}

func TestSocketType_Pairs(t *testing.T) {
	assert.True(t, SocketPush.IsPeer(SocketPull))
	assert.True(t, SocketPair.IsPeer(SocketPair))
	assert.True(t, SocketBus.IsPeer(SocketBus))
	assert.False(t, SocketPush.IsPeer(SocketPush))
	assert.False(t, SocketReq.IsPeer(SocketPull))

	peer, ok := SocketSurveyor.Peer()
	require.True(t, ok)
	assert.Equal(t, SocketRespondent, peer)
	assert.Equal(t, 6, SocketSurveyor.Protocol())

	unknown := SocketType(7)
	assert.False(t, unknown.Valid())
	assert.False(t, unknown.IsPeer(SocketPair))
	assert.Equal(t, "unknown(7)", unknown.String())
}

// ============================================================================
//                              选项
// ============================================================================

func TestIntOption_Encoding(t *testing.T) {
	for _, v := range []int{0, 1, -1, 1 << 20, -(1 << 30)} {
		got, err := DecodeInt(EncodeInt(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.Equal(t, []byte{0x10, 0, 0, 0}, EncodeInt(16))

	_, err := DecodeInt([]byte{1, 2})
	assert.ErrorIs(t, err, ErrIntOptionSize)
}

func TestEndpointOptions(t *testing.T) {
	o := DefaultEndpointOptions()
	assert.Equal(t, 8, o.SndPrio)

	v, ok := o.Get(OptIPv4Only)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	o.IPv4Only = false
	v, _ = o.Get(OptIPv4Only)
	assert.Equal(t, 0, v)

	_, ok = o.Get(OptLinger)
	assert.False(t, ok)

	assert.True(t, OptRcvPrio.IsEndpointScoped())
	assert.False(t, OptSndBuf.IsEndpointScoped())
}

// ============================================================================
//                              统计与消息
// ============================================================================

func TestStatName(t *testing.T) {
	assert.True(t, StatCurrentConnections.IsGauge())
	assert.True(t, StatCurrentEpErrors.IsGauge())
	assert.False(t, StatBytesSent.IsGauge())
	assert.Equal(t, "bind_errors", StatBindErrors.String())

	seen := make(map[string]bool)
	for _, s := range AllStats() {
		assert.False(t, seen[s.String()], s.String())
		seen[s.String()] = true
	}
}

func TestMessage(t *testing.T) {
	m := &Message{Header: []byte{1, 2}, Body: []byte("abc")}
	assert.Equal(t, 5, m.Size())

	c := m.Clone()
	c.Body[0] = 'x'
	assert.Equal(t, "abc", string(m.Body))

	var dst Message
	m.MoveTo(&dst)
	assert.Zero(t, m.Size())
	assert.Equal(t, []byte{1, 2}, dst.Header)

	dst.Reset()
	assert.Nil(t, dst.Body)
	assert.Nil(t, NewMessage(nil).Clone().Body)
}

func TestEvtEndpointError_Cleared(t *testing.T) {
	assert.True(t, EvtEndpointError{}.Cleared())
	assert.False(t, EvtEndpointError{Errno: 104}.Cleared())
	assert.Equal(t, "stopping", EndpointStopping.String())
}
