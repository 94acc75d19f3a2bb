package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/duetapp/duet/internal/metrics"
)

// Metrics records request counts, in-flight requests and latency.
func Metrics(m *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.GaugeRequests.Inc()
			defer m.GaugeRequests.Dec()

			start := time.Now()
			rw := wrap(w)

			next.ServeHTTP(rw, r)

			m.HistRequestDuration.Observe(time.Since(start).Seconds())
			m.CounterRequests.WithLabelValues(r.Method, strconv.Itoa(rw.statusCode)).Inc()
		})
	}
}
