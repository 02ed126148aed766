package metrics

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// PrometheusHandler exposes Metrics in Prometheus' text exposition format.
//
// All counters are exposed as a single metric with an `event` label.
func PrometheusHandler(m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			http.Error(w, "metrics not configured", http.StatusInternalServerError)
			return
		}

		snap := m.Snapshot()
		keys := slices.Sorted(maps.Keys(snap))

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = fmt.Fprintln(w, "# HELP pairsignal_events_total Signaling event counters.")
		_, _ = fmt.Fprintln(w, "# TYPE pairsignal_events_total counter")
		escaper := strings.NewReplacer("\\", "\\\\", "\"", "\\\"")
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "pairsignal_events_total{event=\"%s\"} %d\n", escaper.Replace(k), snap[k])
		}
	})
}
