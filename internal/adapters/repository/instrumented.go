package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/ports"
)

// StoreMetrics times document store calls.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
}

// NewStoreMetrics registers the store histogram on registry. A nil
// registry leaves the collector unregistered.
func NewStoreMetrics(registry prometheus.Registerer) *StoreMetrics {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "operation", "outcome"},
	)
	if registry != nil {
		registry.MustRegister(duration)
	}
	return &StoreMetrics{duration: duration}
}

// Instrument wraps a collection so every call is logged and timed.
func Instrument(name string, c ports.Collection, metrics *StoreMetrics, log *logger.Logger) ports.Collection {
	return &instrumentedCollection{name: name, next: c, metrics: metrics, logger: log}
}

type instrumentedCollection struct {
	name    string
	next    ports.Collection
	metrics *StoreMetrics
	logger  *logger.Logger
}

func (c *instrumentedCollection) observe(operation string, start time.Time, err error) {
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.metrics != nil {
		c.metrics.duration.WithLabelValues(c.name, operation, outcome).Observe(elapsed.Seconds())
	}
	if c.logger != nil {
		c.logger.LogStoreOperation(operation, c.name, float64(elapsed.Nanoseconds())/1e6, err)
	}
}

func (c *instrumentedCollection) Find(ctx context.Context, matches ...ports.Match) ([]ports.Document, error) {
	start := time.Now()
	docs, err := c.next.Find(ctx, matches...)
	c.observe("find", start, err)
	return docs, err
}

func (c *instrumentedCollection) Get(ctx context.Context, id string) (ports.Document, error) {
	start := time.Now()
	doc, err := c.next.Get(ctx, id)
	if err == ports.ErrDocumentNotFound {
		c.observe("get", start, nil)
	} else {
		c.observe("get", start, err)
	}
	return doc, err
}

func (c *instrumentedCollection) Insert(ctx context.Context, body json.RawMessage) (string, error) {
	start := time.Now()
	id, err := c.next.Insert(ctx, body)
	c.observe("insert", start, err)
	return id, err
}

func (c *instrumentedCollection) Merge(ctx context.Context, id string, patch json.RawMessage) (bool, error) {
	start := time.Now()
	matched, err := c.next.Merge(ctx, id, patch)
	c.observe("merge", start, err)
	return matched, err
}

func (c *instrumentedCollection) Delete(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	deleted, err := c.next.Delete(ctx, id)
	c.observe("delete", start, err)
	return deleted, err
}
