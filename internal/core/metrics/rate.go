package metrics

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              RateMeter 速率计算器
// ============================================================================

// rateWindow 速率窗口（秒）
const rateWindow = 60

// RateMeter 基于滑动窗口的速率计算器
//
// 使用 60 个 1 秒桶计算最近 60 秒的平均速率。
type RateMeter struct {
	clk clock.Clock

	mu       sync.Mutex
	buckets  [rateWindow]int64
	lastIdx  int
	lastTime time.Time
}

// NewRateMeter 创建速率计算器
func NewRateMeter(clk clock.Clock) *RateMeter {
	return &RateMeter{
		clk:      clk,
		lastTime: clk.Now(),
	}
}

// Add 累加到当前桶
func (r *RateMeter) Add(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	r.buckets[r.lastIdx] += n
}

// Rate 返回平均速率（每秒）
func (r *RateMeter) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	var total int64
	for _, v := range r.buckets {
		total += v
	}
	return float64(total) / rateWindow
}

// Reset 清空所有桶
func (r *RateMeter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = [rateWindow]int64{}
	r.lastIdx = 0
	r.lastTime = r.clk.Now()
}

// advance 按流逝的整秒数轮转桶，调用方持有 mu
func (r *RateMeter) advance() {
	elapsed := r.clk.Since(r.lastTime)
	if elapsed < time.Second {
		return
	}
	seconds := int(elapsed / time.Second)
	if seconds >= rateWindow {
		r.buckets = [rateWindow]int64{}
		r.lastIdx = 0
	} else {
		for i := 0; i < seconds; i++ {
			r.lastIdx = (r.lastIdx + 1) % rateWindow
			r.buckets[r.lastIdx] = 0
		}
	}
	r.lastTime = r.lastTime.Add(time.Duration(seconds) * time.Second)
}
