package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magenta-aps/raclients/pkg/metrics"
)

func TestTransport_CountsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	client := &http.Client{
		Transport: metrics.NewTransport(nil, "mo", metrics.WithRegisterer(reg)),
	}

	for range 2 {
		resp, err := client.Get(srv.URL + "/ok")
		require.NoError(t, err)
		resp.Body.Close()
	}
	resp, err := client.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	seen := make(map[string]bool)
	for _, fam := range families {
		seen[fam.GetName()] = true
		if fam.GetName() != "raclients_http_requests_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			counts[labels["code"]] = m.GetCounter().GetValue()
			assert.Equal(t, "mo", labels["service"])
			assert.Equal(t, http.MethodGet, labels["method"])
		}
	}

	assert.True(t, seen["raclients_http_request_duration_seconds"])
	assert.Equal(t, 2.0, counts["200"])
	assert.Equal(t, 1.0, counts["404"])
}

func TestTransport_SharedCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Two transports against the same registerer must not panic on
	// duplicate registration; they share the collectors.
	moTransport := metrics.NewTransport(nil, "mo", metrics.WithRegisterer(reg))
	loraTransport := metrics.NewTransport(nil, "lora", metrics.WithRegisterer(reg))

	assert.NotNil(t, moTransport)
	assert.NotNil(t, loraTransport)
}
