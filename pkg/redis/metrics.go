package redis

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journal",
		Subsystem: "redis",
		Name:      "requests_total",
		Help:      "Redis commands issued, by method.",
	}, []string{"method"})

	// A missing key is a normal miss, not a failure.
	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journal",
		Subsystem: "redis",
		Name:      "errors_total",
		Help:      "Redis commands that failed, by method.",
	}, []string{"method"})

	commandSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "journal",
		Subsystem: "redis",
		Name:      "request_duration_seconds",
		Help:      "Redis command latency, by method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

// MetricsClient is a Client that reports every command to Prometheus.
type MetricsClient struct {
	next *Client
}

// NewMetricsClient instruments next.
func NewMetricsClient(next *Client) *MetricsClient {
	return &MetricsClient{next: next}
}

// track starts timing method. Call the returned func with the command's error.
func track(method string) func(error) {
	start := time.Now()
	return func(err error) {
		commandSeconds.WithLabelValues(method).Observe(time.Since(start).Seconds())
		commandsTotal.WithLabelValues(method).Inc()
		if err != nil && !errors.Is(err, Nil) {
			failuresTotal.WithLabelValues(method).Inc()
		}
	}
}

func (m *MetricsClient) Get(ctx context.Context, key string) (value string, err error) {
	done := track("get")
	defer func() { done(err) }()
	return m.next.Get(ctx, key)
}

func (m *MetricsClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) (err error) {
	done := track("set")
	defer func() { done(err) }()
	return m.next.Set(ctx, key, value, ttl)
}

func (m *MetricsClient) Delete(ctx context.Context, key string) (err error) {
	done := track("delete")
	defer func() { done(err) }()
	return m.next.Delete(ctx, key)
}

func (m *MetricsClient) Ping(ctx context.Context) (err error) {
	done := track("ping")
	defer func() { done(err) }()
	return m.next.Ping(ctx)
}

// Close closes the wrapped client.
func (m *MetricsClient) Close() error {
	return m.next.Close()
}
