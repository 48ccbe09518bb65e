package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 是支持 JSON 字符串解析的 time.Duration 包装类型
//
// 支持的格式:
//   - 字符串: "30s", "5m", "100ms" 等
//   - 数字: 纳秒数
//
// 负值表示无限（用于超时类选项）。
type Duration time.Duration

// Infinite 无限时长
const Infinite = Duration(-1)

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "infinite" {
			*d = Infinite
			return nil
		}
		duration, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration string %q: %w", s, err)
		}
		*d = Duration(duration)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Duration(n)
		return nil
	}

	return fmt.Errorf("duration must be a string (e.g., \"30s\") or number (nanoseconds)")
}

// MarshalJSON 实现 json.Marshaler 接口
func (d Duration) MarshalJSON() ([]byte, error) {
	if d.IsInfinite() {
		return json.Marshal("infinite")
	}
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回底层的 time.Duration 值
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// IsInfinite 是否为无限
func (d Duration) IsInfinite() bool {
	return d < 0
}

// Milliseconds 转为整数毫秒，无限为 -1
func (d Duration) Milliseconds() int {
	if d.IsInfinite() {
		return -1
	}
	return int(time.Duration(d) / time.Millisecond)
}

// FromMilliseconds 由整数毫秒构造，负数为无限
func FromMilliseconds(ms int) Duration {
	if ms < 0 {
		return Infinite
	}
	return Duration(time.Duration(ms) * time.Millisecond)
}

// String 返回字符串表示
func (d Duration) String() string {
	if d.IsInfinite() {
		return "infinite"
	}
	return time.Duration(d).String()
}
