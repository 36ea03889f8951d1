package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMeterName is the instrumentation scope of the HTTP server instruments
const HTTPMeterName = "github.com/psim/backend/http"

var (
	httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	httpSizeBuckets     = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}
)

type httpInstruments struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	requestSize  metric.Int64Histogram
	responseSize metric.Int64Histogram
	active       metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	ins := &httpInstruments{}
	var err error
	if ins.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Requests served"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if ins.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Request latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(httpDurationBuckets...)); err != nil {
		return nil, err
	}
	if ins.requestSize, err = meter.Int64Histogram("http.server.request.body.size",
		metric.WithDescription("Request body size"), metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(httpSizeBuckets...)); err != nil {
		return nil, err
	}
	if ins.responseSize, err = meter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("Response body size"), metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(httpSizeBuckets...)); err != nil {
		return nil, err
	}
	if ins.active, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests in flight"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return ins, nil
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests. Routes are labelled by their template so voucher and item ids do
// not become label values. A nil meter returns a pass-through handler.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }, nil
	}
	ins, err := newHTTPInstruments(meter)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		method := attribute.String("http.request.method", c.Request.Method)

		ins.active.Add(ctx, 1, metric.WithAttributes(method))
		defer ins.active.Add(ctx, -1, metric.WithAttributes(method))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		base := metric.WithAttributes(method, attribute.String("http.route", route))
		status := c.Writer.Status()

		ins.requests.Add(ctx, 1, metric.WithAttributes(
			method,
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
			attribute.String("http.response.status_class", statusClass(status)),
		))
		ins.duration.Record(ctx, time.Since(start).Seconds(), base)
		if n := c.Request.ContentLength; n > 0 {
			ins.requestSize.Record(ctx, n, base)
		}
		if n := c.Writer.Size(); n > 0 {
			ins.responseSize.Record(ctx, int64(n), base)
		}
	}, nil
}

// statusClass groups a status code as 2xx, 4xx and so on
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}
