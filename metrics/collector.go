// Package metrics exposes recorder activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/poiesic/recorder"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recorder"

// Collector implements recorder.Monitor by updating Prometheus metrics.
// Every metric carries a "recorder" label so several recorders can share a registry.
type Collector struct {
	storageReady     prometheus.Gauge
	storageWait      prometheus.Gauge
	batchesFlushed   prometheus.Counter
	recordsFlushed   prometheus.Counter
	batchSize        prometheus.Histogram
	flushSeconds     prometheus.Histogram
	queriesAnswered  prometheus.Counter
	recordsLoaded    prometheus.Counter
	querySeconds     prometheus.Histogram
	repliesDiscarded prometheus.Counter
	recordsDropped   prometheus.Counter
	workerFailures   prometheus.Counter
}

var _ recorder.Monitor = (*Collector)(nil)

// NewCollector creates the metrics for the recorder called name and registers them with reg.
func NewCollector(reg prometheus.Registerer, name string) (*Collector, error) {
	labels := prometheus.Labels{"recorder": name}
	c := &Collector{
		storageReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "storage_ready",
			Help:        "1 while the worker owns a ready storage, 0 otherwise",
			ConstLabels: labels,
		}),
		storageWait: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "storage_wait_seconds",
			Help:        "Time the worker waited for its storage to become ready",
			ConstLabels: labels,
		}),
		batchesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_flushed_total",
			Help:        "Total Save calls made on the storage",
			ConstLabels: labels,
		}),
		recordsFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "records_flushed_total",
			Help:        "Total records handed to the storage",
			ConstLabels: labels,
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "batch_size",
			Help:        "Distribution of records per Save call",
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
			ConstLabels: labels,
		}),
		flushSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "flush_seconds",
			Help:        "Duration of storage Save calls",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		queriesAnswered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "queries_answered_total",
			Help:        "Total Load calls made on the storage",
			ConstLabels: labels,
		}),
		recordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "records_loaded_total",
			Help:        "Total records returned by the storage",
			ConstLabels: labels,
		}),
		querySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "query_seconds",
			Help:        "Duration of storage Load calls",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		repliesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "replies_discarded_total",
			Help:        "Total query answers discarded because the caller stopped waiting",
			ConstLabels: labels,
		}),
		recordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "records_dropped_total",
			Help:        "Total records rejected because the worker had terminated",
			ConstLabels: labels,
		}),
		workerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "worker_failures_total",
			Help:        "Total abnormal worker terminations",
			ConstLabels: labels,
		}),
	}

	for _, m := range []prometheus.Collector{
		c.storageReady, c.storageWait,
		c.batchesFlushed, c.recordsFlushed, c.batchSize, c.flushSeconds,
		c.queriesAnswered, c.recordsLoaded, c.querySeconds,
		c.repliesDiscarded, c.recordsDropped, c.workerFailures,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) StorageReady(wait time.Duration) {
	c.storageWait.Set(wait.Seconds())
	c.storageReady.Set(1)
}

func (c *Collector) BatchFlushed(size int, took time.Duration) {
	c.batchesFlushed.Inc()
	c.recordsFlushed.Add(float64(size))
	c.batchSize.Observe(float64(size))
	c.flushSeconds.Observe(took.Seconds())
}

func (c *Collector) QueryAnswered(results int, took time.Duration) {
	c.queriesAnswered.Inc()
	c.recordsLoaded.Add(float64(results))
	c.querySeconds.Observe(took.Seconds())
}

func (c *Collector) ReplyDiscarded() {
	c.repliesDiscarded.Inc()
}

func (c *Collector) RecordDropped() {
	c.recordsDropped.Inc()
}

func (c *Collector) WorkerStopped(err error) {
	c.storageReady.Set(0)
	if err != nil {
		c.workerFailures.Inc()
	}
}
