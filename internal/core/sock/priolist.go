package sock

import "github.com/dep2p/go-sptransport/config"

// prioList 按优先级分槽的就绪管道列表
//
// pick 返回最高优先级（数值最小）非空槽中的当前管道；同一槽内轮询。
type prioList struct {
	slots [config.MaxPriority][]*pipeEntry
	cur   [config.MaxPriority]int
}

func slotOf(prio int) int {
	switch {
	case prio < config.MinPriority:
		return 0
	case prio > config.MaxPriority:
		return config.MaxPriority - 1
	default:
		return prio - 1
	}
}

func (l *prioList) add(e *pipeEntry, prio int) {
	s := slotOf(prio)
	for _, x := range l.slots[s] {
		if x == e {
			return
		}
	}
	l.slots[s] = append(l.slots[s], e)
}

func (l *prioList) remove(e *pipeEntry) {
	for s := range l.slots {
		for i, x := range l.slots[s] {
			if x != e {
				continue
			}
			l.slots[s] = append(l.slots[s][:i], l.slots[s][i+1:]...)
			if l.cur[s] > i {
				l.cur[s]--
			}
			if n := len(l.slots[s]); n == 0 || l.cur[s] >= n {
				l.cur[s] = 0
			}
			return
		}
	}
}

// pick 返回当前应使用的管道
func (l *prioList) pick() *pipeEntry {
	for s := range l.slots {
		if n := len(l.slots[s]); n > 0 {
			return l.slots[s][l.cur[s]%n]
		}
	}
	return nil
}

// advance 同一优先级内轮转到下一个管道
func (l *prioList) advance(e *pipeEntry) {
	for s := range l.slots {
		if n := len(l.slots[s]); n > 0 && l.slots[s][l.cur[s]%n] == e {
			l.cur[s] = (l.cur[s] + 1) % n
			return
		}
	}
}

func (l *prioList) len() int {
	n := 0
	for s := range l.slots {
		n += len(l.slots[s])
	}
	return n
}
