// Package envelope 实现消息信封的拆帧与组帧
//
// 不能直接传递结构化消息的传输（字节流类）把头部和正文合并为一帧：
//
//	uvarint(len(header)) | header | body
//
// 发送侧由字节流传输自行 Join；接收侧套接字核心对未带 PARSED 标志的消息 Split。
package envelope

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"
)

// MaxHeaderSize 头部长度上限
const MaxHeaderSize = 64 * 1024

var (
	// ErrMalformed 帧格式错误
	ErrMalformed = errors.New("malformed envelope")

	// ErrHeaderTooLarge 头部超过 MaxHeaderSize
	ErrHeaderTooLarge = errors.New("envelope header too large")
)

// Size 返回组帧后的总长度
func Size(header, body []byte) int {
	return varint.UvarintSize(uint64(len(header))) + len(header) + len(body)
}

// Join 将头部与正文组成一帧
func Join(header, body []byte) []byte {
	buf := make([]byte, Size(header, body))
	n := varint.PutUvarint(buf, uint64(len(header)))
	n += copy(buf[n:], header)
	copy(buf[n:], body)
	return buf
}

// Split 将一帧拆分为头部与正文
//
// 返回的切片引用 frame 的底层数组，不做复制。
func Split(frame []byte) (header, body []byte, err error) {
	hlen, n, err := varint.FromUvarint(frame)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if hlen > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}
	if uint64(len(frame)-n) < hlen {
		return nil, nil, fmt.Errorf("%w: header length %d exceeds frame", ErrMalformed, hlen)
	}
	end := n + int(hlen)
	if hlen > 0 {
		header = frame[n:end]
	}
	return header, frame[end:], nil
}
