// Package metrics instruments outbound HTTP requests with Prometheus
// collectors. It is wired in by wrapping the base transport of an
// authenticated client.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type config struct {
	registerer prometheus.Registerer
}

// Option defines a functional option for configuring the transport.
type Option func(*config)

// WithRegisterer sets the Prometheus registerer the collectors are
// registered with. Defaults to the global default registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// Transport is an http.RoundTripper that counts requests and observes
// their duration, labeled by target service.
type Transport struct {
	next     http.RoundTripper
	service  string
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewTransport wraps next with request instrumentation. A nil next uses
// http.DefaultTransport. The service label distinguishes MO from LoRa
// traffic on shared collectors.
func NewTransport(next http.RoundTripper, service string, opts ...Option) *Transport {
	cfg := config{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&cfg)
	}
	if next == nil {
		next = http.DefaultTransport
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "raclients_http_requests_total",
		Help: "Outbound HTTP requests, by target service, method and status code.",
	}, []string{"service", "method", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "raclients_http_request_duration_seconds",
		Help:    "Outbound HTTP request duration, by target service and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method"})

	return &Transport{
		next:     next,
		service:  service,
		requests: registerCounter(cfg.registerer, requests),
		duration: registerHistogram(cfg.registerer, duration),
	}
}

// RoundTrip implements http.RoundTripper. Transport-level failures are
// counted under the synthetic code "error".
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	t.requests.WithLabelValues(t.service, req.Method, code).Inc()
	t.duration.WithLabelValues(t.service, req.Method).Observe(time.Since(start).Seconds())

	return resp, err
}

// Several transports share the same collectors when registered against the
// same registerer, so re-registration resolves to the existing collector.
func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}
	return h
}
