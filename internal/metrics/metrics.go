package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Проекты, созданные по переходу клиента в sold
	ProjectsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pooldesk_projects_created_total",
			Help: "Total number of projects created by the sale lifecycle",
		},
	)

	// Побочные шаги, которые упали, не отменив основную запись
	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pooldesk_lifecycle_side_effect_failures_total",
			Help: "Best-effort lifecycle steps that failed",
		},
		[]string{"step"}, // project, todos, activity, event, project_lookup
	)

	TodoTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pooldesk_todo_transitions_total",
			Help: "Todo state transitions",
		},
		[]string{"to"}, // completed, pending
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pooldesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func IncSideEffectFailure(step string) {
	SideEffectFailures.WithLabelValues(step).Inc()
}

func IncTodoTransition(to string) {
	TodoTransitions.WithLabelValues(to).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// GinMiddleware пишет длительность запроса по шаблону маршрута, а не по сырому URL.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
