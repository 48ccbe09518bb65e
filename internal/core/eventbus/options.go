package eventbus

// subscriptionSettings 订阅设置
type subscriptionSettings struct {
	buffer int
}

// emitterSettings 发射器设置
type emitterSettings struct {
	stateful bool
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*subscriptionSettings)

// EmitterOpt 发射器选项
type EmitterOpt func(*emitterSettings)

// BufSize 设置订阅缓冲区大小
func BufSize(size int) SubscriptionOpt {
	return func(s *subscriptionSettings) {
		s.buffer = size
	}
}

// Stateful 发射器保留最后一个事件，新订阅者立即收到
func Stateful() EmitterOpt {
	return func(s *emitterSettings) {
		s.stateful = true
	}
}
