package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// метрики собираются счётчиками prometheus и отдаются на /metrics
var (
	// количество HTTP-запросов по методу и статусу
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starinhub_http_requests_total",
		Help: "Количество HTTP-запросов",
	}, []string{"method", "status"})

	// длительность обработки запросов
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "starinhub_http_request_duration_seconds",
		Help:    "Время обработки HTTP-запроса",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})

	// количество записанных событий трекинга по типам
	TrackedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starinhub_tracking_events_total",
		Help: "Количество записанных событий трекинга",
	}, []string{"type"})
)

// Handler отдаёт страницу метрик prometheus
func Handler() http.Handler {

	return promhttp.Handler()
}

// Middleware считает запросы и их длительность
func Middleware(next http.Handler) http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		RequestDuration.Observe(time.Since(start).Seconds())
	})
}
