// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records HTTP and account metrics.
type Collector struct {
	registry *prometheus.Registry

	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	signinSuccess   prometheus.Counter
	signinFailure   prometheus.Counter
	signups         prometheus.Counter
}

// NewCollector creates a Collector with its own registry and registers all
// metrics on it.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "searchuser_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "searchuser_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		signinSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchuser_signin_success_total",
			Help: "Successful sign-ins.",
		}),
		signinFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchuser_signin_failure_total",
			Help: "Failed sign-in attempts.",
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchuser_signup_total",
			Help: "Accounts created.",
		}),
	}

	c.registry.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.signinSuccess,
		c.signinFailure,
		c.signups,
	)

	return c
}

// RecordHTTPStatus counts one response with the given status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration observes one request latency.
func (c *Collector) RecordRequestDuration(d time.Duration) {
	c.requestDuration.Observe(d.Seconds())
}

// RecordSigninSuccess counts one successful sign-in.
func (c *Collector) RecordSigninSuccess() { c.signinSuccess.Inc() }

// RecordSigninFailure counts one failed sign-in attempt.
func (c *Collector) RecordSigninFailure() { c.signinFailure.Inc() }

// RecordSignup counts one created account.
func (c *Collector) RecordSignup() { c.signups.Inc() }

// Handler returns the /metrics scrape handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware instruments requests with status and latency metrics.
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			c.RecordHTTPStatus(rec.statusCode)
			c.RecordRequestDuration(time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}
