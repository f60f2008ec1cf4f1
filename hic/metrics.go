package hic

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	queries     *prometheus.CounterVec
	blocks      prometheus.Counter
	blockBytes  prometheus.Counter
	records     prometheus.Counter
	normVectors prometheus.Counter
	zoomLevels  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "straw",
			Name:      "queries_total",
			Help:      "Region queries by result.",
		}, []string{"result"}),
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "straw",
			Name:      "blocks_decoded_total",
			Help:      "Blocks fetched and decoded.",
		}),
		blockBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "straw",
			Name:      "block_bytes_read_total",
			Help:      "Compressed block bytes read.",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "straw",
			Name:      "records_returned_total",
			Help:      "Contact records returned by queries.",
		}),
		normVectors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "straw",
			Name:      "norm_vectors_loaded_total",
			Help:      "Normalization vectors read from file.",
		}),
		zoomLevels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "straw",
			Name:      "zoom_levels_loaded_total",
			Help:      "Matrix zoom level indexes read from file.",
		}),
	}
	if reg == nil {
		return m
	}
	m.queries = register(reg, m.queries).(*prometheus.CounterVec)
	m.blocks = register(reg, m.blocks).(prometheus.Counter)
	m.blockBytes = register(reg, m.blockBytes).(prometheus.Counter)
	m.records = register(reg, m.records).(prometheus.Counter)
	m.normVectors = register(reg, m.normVectors).(prometheus.Counter)
	m.zoomLevels = register(reg, m.zoomLevels).(prometheus.Counter)
	return m
}

// register shares collectors between sessions using the same registry.
func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}
