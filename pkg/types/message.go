package types

// Message 消息
//
// Header 为协议头部（如 REQ 的请求 ID），Body 为应用数据。
// 非 PARSED 路径上，传输交付的 Body 是完整的信封帧，Header 为空，
// 由套接字核心负责拆分。
type Message struct {
	Header []byte
	Body   []byte
}

// NewMessage 创建只有正文的消息
func NewMessage(body []byte) *Message {
	return &Message{Body: body}
}

// Size 返回消息总字节数
func (m *Message) Size() int {
	return len(m.Header) + len(m.Body)
}

// Clone 深拷贝消息
func (m *Message) Clone() *Message {
	c := &Message{}
	if m.Header != nil {
		c.Header = append([]byte(nil), m.Header...)
	}
	if m.Body != nil {
		c.Body = append([]byte(nil), m.Body...)
	}
	return c
}

// Reset 清空消息
func (m *Message) Reset() {
	m.Header = nil
	m.Body = nil
}

// MoveTo 将内容移交给 dst 并清空自身
func (m *Message) MoveTo(dst *Message) {
	dst.Header, dst.Body = m.Header, m.Body
	m.Header, m.Body = nil, nil
}
