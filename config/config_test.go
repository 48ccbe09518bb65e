package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, time.Second, cfg.Socket.Linger.Duration())
	assert.Equal(t, 8, cfg.Socket.SndPrio)
	assert.True(t, cfg.Socket.IPv4Only)
	assert.True(t, cfg.Socket.SndTimeout.IsInfinite())
	assert.True(t, cfg.Transport.EnableInproc)
	assert.True(t, cfg.Metrics.Enabled)

	t.Log("✅ NewConfig 测试通过")
}

// TestSocketConfig 测试套接字配置
func TestSocketConfig(t *testing.T) {
	t.Run("Validate_Priority", func(t *testing.T) {
		cfg := DefaultSocketConfig().WithPriorities(0, 8)
		assert.Error(t, cfg.Validate())

		cfg = DefaultSocketConfig().WithPriorities(1, 17)
		assert.Error(t, cfg.Validate())

		cfg = DefaultSocketConfig().WithPriorities(1, 16)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Validate_Buffers", func(t *testing.T) {
		cfg := DefaultSocketConfig().WithBuffers(0, 1024)
		assert.Error(t, cfg.Validate())
	})

	t.Run("Validate_MaxTTL", func(t *testing.T) {
		cfg := DefaultSocketConfig()
		cfg.MaxTTL = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("WithTimeouts", func(t *testing.T) {
		cfg := DefaultSocketConfig().WithTimeouts(50*time.Millisecond, -1)
		assert.Equal(t, 50, cfg.SndTimeout.Milliseconds())
		assert.Equal(t, -1, cfg.RcvTimeout.Milliseconds())
	})

	t.Run("WithLinger", func(t *testing.T) {
		cfg := DefaultSocketConfig().WithLinger(0)
		assert.Zero(t, cfg.Linger.Duration())
	})

	t.Log("✅ SocketConfig 测试通过")
}

// TestTransportConfig 测试传输配置
func TestTransportConfig(t *testing.T) {
	cfg := DefaultTransportConfig().WithInproc(false)
	assert.False(t, cfg.EnableInproc)

	cfg.Inproc.MaxConnections = -1
	assert.Error(t, cfg.Validate())
}

// TestLogConfig 测试日志配置
func TestLogConfig(t *testing.T) {
	assert.NoError(t, LogConfig{}.Validate())
	assert.NoError(t, LogConfig{Level: "debug"}.Validate())
	assert.Error(t, LogConfig{Level: "verbose"}.Validate())
}

// TestFromJSON 测试 JSON 加载
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"socket": {"linger": "2s", "sndprio": 4, "rcvtimeo": "infinite", "sndtimeo": 250000000},
		"transport": {"enable_inproc": false},
		"log": {"level": "warn"}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Socket.Linger.Duration())
	assert.Equal(t, 4, cfg.Socket.SndPrio)
	assert.Equal(t, 8, cfg.Socket.RcvPrio, "未出现的字段保留默认值")
	assert.True(t, cfg.Socket.RcvTimeout.IsInfinite())
	assert.Equal(t, 250, cfg.Socket.SndTimeout.Milliseconds())
	assert.False(t, cfg.Transport.EnableInproc)
	assert.Equal(t, "warn", cfg.Log.Level)
}

// TestFromJSON_Invalid 测试非法 JSON
func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`{"socket": {"linger": "soon"}}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"socket": {"sndprio": 99}}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}

// TestLoad 测试从文件加载
func TestLoad(t *testing.T) {
	cfg := NewConfig()
	cfg.Socket = cfg.Socket.WithLinger(3 * time.Second)
	data, err := cfg.ToJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sptransport.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestDurations 测试 Duration 编解码
func TestDurations(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"100ms"`), &d))
	assert.Equal(t, 100*time.Millisecond, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`5000`), &d))
	assert.Equal(t, 5*time.Microsecond, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Infinite)
	require.NoError(t, err)
	assert.Equal(t, `"infinite"`, string(out))

	assert.Equal(t, Infinite, FromMilliseconds(-5))
	assert.Equal(t, Duration(1500*time.Millisecond), FromMilliseconds(1500))
	assert.Equal(t, "infinite", Infinite.String())
}
