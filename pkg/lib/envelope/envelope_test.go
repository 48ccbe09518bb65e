package envelope

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinSplit(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		body   []byte
	}{
		{"空头部", nil, []byte("ABC")},
		{"请求 ID 头部", []byte{0x80, 0, 0, 1}, []byte("hello")},
		{"空正文", []byte("hdr"), nil},
		{"长头部", bytes.Repeat([]byte{7}, 300), []byte("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := Join(tt.header, tt.body)
			assert.Equal(t, Size(tt.header, tt.body), len(frame))

			hdr, body, err := Split(frame)
			require.NoError(t, err)
			assert.Equal(t, len(tt.header), len(hdr))
			assert.True(t, bytes.Equal(tt.header, hdr))
			assert.True(t, bytes.Equal(tt.body, body))
		})
	}
}

func TestSplit_NoHeaderIsOneBytePrefix(t *testing.T) {
	frame := Join(nil, []byte("ABC"))
	assert.Equal(t, []byte{0, 'A', 'B', 'C'}, frame)

	hdr, body, err := Split(frame)
	require.NoError(t, err)
	assert.Nil(t, hdr)
	assert.Equal(t, []byte("ABC"), body)
}

func TestSplit_Malformed(t *testing.T) {
	_, _, err := Split(nil)
	assert.ErrorIs(t, err, ErrMalformed)

	// 声明 5 字节头部，实际只有 2 字节
	_, _, err = Split([]byte{5, 1, 2})
	assert.ErrorIs(t, err, ErrMalformed)

	// 不完整的 varint
	_, _, err = Split([]byte{0x80})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSplit_HeaderTooLarge(t *testing.T) {
	frame := Join(make([]byte, MaxHeaderSize+1), nil)
	_, _, err := Split(frame)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}
