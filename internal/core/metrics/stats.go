package metrics

import (
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-sptransport/pkg/lib/log"
	"github.com/dep2p/go-sptransport/pkg/types"
)

var logger = log.Logger("core/metrics")

// statIndex StatName 到计数器下标的映射
var statIndex = func() map[types.StatName]int {
	m := make(map[types.StatName]int)
	for i, s := range types.AllStats() {
		m[s] = i
	}
	return m
}()

// Stats 单个套接字的统计
type Stats struct {
	counters []atomic.Int64

	sendRate *RateMeter
	recvRate *RateMeter
}

// NewStats 创建统计，clk 驱动速率窗口
func NewStats(clk clock.Clock) *Stats {
	return &Stats{
		counters: make([]atomic.Int64, len(statIndex)),
		sendRate: NewRateMeter(clk),
		recvRate: NewRateMeter(clk),
	}
}

// Add 累加统计项，未知统计项被忽略并返回 false
func (s *Stats) Add(name types.StatName, delta int64) bool {
	i, ok := statIndex[name]
	if !ok {
		logger.Debug("忽略未知统计项", "stat", int(name))
		return false
	}
	v := s.counters[i].Add(delta)
	if v < 0 && !name.IsGauge() {
		logger.Warn("计数器出现负值", "stat", name, "value", v)
	}

	switch name {
	case types.StatBytesSent:
		s.sendRate.Add(delta)
	case types.StatBytesReceived:
		s.recvRate.Add(delta)
	}
	return true
}

// Get 读取统计项
func (s *Stats) Get(name types.StatName) int64 {
	i, ok := statIndex[name]
	if !ok {
		return 0
	}
	return s.counters[i].Load()
}

// Snapshot 返回当前所有统计项的快照
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Values:  make(map[types.StatName]int64, len(statIndex)),
		RateOut: s.sendRate.Rate(),
		RateIn:  s.recvRate.Rate(),
	}
	for name, i := range statIndex {
		snap.Values[name] = s.counters[i].Load()
	}
	return snap
}

// Snapshot 统计快照
type Snapshot struct {
	Values  map[types.StatName]int64
	RateIn  float64 // 入站字节速率（字节/秒）
	RateOut float64 // 出站字节速率（字节/秒）
}

// Get 读取快照中的统计项
func (s Snapshot) Get(name types.StatName) int64 {
	return s.Values[name]
}
