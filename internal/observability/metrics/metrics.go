package metrics

import (
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "path", "status_code"})

	dbOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_operation_duration_seconds",
		Help:    "Time spent executing cart database operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	redisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Time spent on cart cache operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	kafkaOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_operation_duration_seconds",
		Help:    "Time spent sending data to Kafka",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	consumerProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_process_duration_seconds",
		Help:    "Time spent persisting cart activity events in the consumer service",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
)

// ObserveHTTPRequest records one latency observation for a request that
// resolved to a route pattern. The path label is the abstract template, not
// the raw request path, keeping label cardinality bounded. A label lookup
// failure is logged and the observation dropped.
func ObserveHTTPRequest(service, method, pattern string, status int, d time.Duration) {
	obs, err := httpRequestDuration.GetMetricWithLabelValues(service, method, pattern, strconv.Itoa(status))
	if err != nil {
		log.Printf("metrics: http histogram lookup failed: %v", err)
		return
	}
	obs.Observe(d.Seconds())
}

// ObserveDBOperation tracks database call duration.
func ObserveDBOperation(operation string, d time.Duration) {
	dbOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveRedisOperation tracks cart cache call duration.
func ObserveRedisOperation(operation string, d time.Duration) {
	redisOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveKafkaOperation tracks kafka call duration.
func ObserveKafkaOperation(operation string, d time.Duration) {
	kafkaOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveConsumerProcessing tracks consumer processing stages.
func ObserveConsumerProcessing(step string, d time.Duration) {
	consumerProcessDuration.WithLabelValues(step).Observe(d.Seconds())
}
