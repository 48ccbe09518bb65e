package metrics

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-sptransport/pkg/types"
)

// Namespace 指标命名空间
const Namespace = "sptransport"

var statHelp = map[types.StatName]string{
	types.StatEstablishedConnections: "Connections established by connecting endpoints.",
	types.StatAcceptedConnections:    "Connections accepted by bound endpoints.",
	types.StatDroppedConnections:     "Connections dropped before they became usable.",
	types.StatBrokenConnections:      "Established connections that failed.",
	types.StatConnectErrors:          "Failed connect attempts.",
	types.StatBindErrors:             "Failed bind attempts.",
	types.StatAcceptErrors:           "Failed accept attempts.",
	types.StatCurrentConnections:     "Currently open connections.",
	types.StatInprogressConnections:  "Connections being established.",
	types.StatCurrentEpErrors:        "Endpoints currently reporting an error.",
	types.StatMessagesSent:           "Messages sent.",
	types.StatMessagesReceived:       "Messages received.",
	types.StatBytesSent:              "Bytes sent.",
	types.StatBytesReceived:          "Bytes received.",
}

var socketLabels = []string{"socket", "type"}

type statDesc struct {
	name      types.StatName
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

type source struct {
	typ   types.SocketType
	stats *Stats
}

// Collector 导出所有已登记套接字的统计
type Collector struct {
	descs   []statDesc
	rateIn  *prometheus.Desc
	rateOut *prometheus.Desc
	sockets *prometheus.Desc

	mu      sync.RWMutex
	sources map[string]source
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建收集器
func NewCollector() *Collector {
	c := &Collector{
		sources: make(map[string]source),
		rateIn: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "receive_rate_bytes"),
			"Average received bytes per second over the last minute.",
			socketLabels, nil,
		),
		rateOut: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "send_rate_bytes"),
			"Average sent bytes per second over the last minute.",
			socketLabels, nil,
		),
		sockets: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "sockets"),
			"Open sockets.",
			nil, nil,
		),
	}
	for _, name := range types.AllStats() {
		fq := prometheus.BuildFQName(Namespace, "", name.String())
		vt := prometheus.GaugeValue
		if !name.IsGauge() {
			fq += "_total"
			vt = prometheus.CounterValue
		}
		c.descs = append(c.descs, statDesc{
			name:      name,
			desc:      prometheus.NewDesc(fq, statHelp[name], socketLabels, nil),
			valueType: vt,
		})
	}
	return c
}

// Register 登记套接字统计，同一 id 重复登记会覆盖
func (c *Collector) Register(id string, typ types.SocketType, stats *Stats) {
	c.mu.Lock()
	c.sources[id] = source{typ: typ, stats: stats}
	c.mu.Unlock()
}

// Unregister 注销套接字统计
func (c *Collector) Unregister(id string) {
	c.mu.Lock()
	delete(c.sources, id)
	c.mu.Unlock()
}

// Len 返回已登记的套接字数量
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d.desc
	}
	ch <- c.rateIn
	ch <- c.rateOut
	ch <- c.sockets
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	ids := make([]string, 0, len(c.sources))
	for id := range c.sources {
		ids = append(ids, id)
	}
	sources := make([]source, 0, len(ids))
	sort.Strings(ids)
	for _, id := range ids {
		sources = append(sources, c.sources[id])
	}
	c.mu.RUnlock()

	ch <- prometheus.MustNewConstMetric(c.sockets, prometheus.GaugeValue, float64(len(ids)))
	for i, src := range sources {
		snap := src.stats.Snapshot()
		labels := []string{ids[i], src.typ.String()}
		for _, d := range c.descs {
			ch <- prometheus.MustNewConstMetric(d.desc, d.valueType, float64(snap.Get(d.name)), labels...)
		}
		ch <- prometheus.MustNewConstMetric(c.rateIn, prometheus.GaugeValue, snap.RateIn, labels...)
		ch <- prometheus.MustNewConstMetric(c.rateOut, prometheus.GaugeValue, snap.RateOut, labels...)
	}
}
