package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "target_cassandra_messages_read_total",
		Help: "Total number of input messages read, by message type.",
	}, []string{"type"})

	RecordsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "target_cassandra_records_persisted_total",
		Help: "Total number of records written to Cassandra, by stream.",
	}, []string{"stream"})

	SchemasSynced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "target_cassandra_schemas_synced_total",
		Help: "Total number of table syncs performed, by stream.",
	}, []string{"stream"})

	InsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "target_cassandra_insert_duration_seconds",
		Help:    "Duration of single-row Cassandra inserts.",
		Buckets: prometheus.DefBuckets,
	})
)
