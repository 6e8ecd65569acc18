package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	PathBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnpath_path_builds_total",
			Help: "Learning paths built, by learner type",
		},
		[]string{"learner_type"},
	)

	LessonsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnpath_lessons_completed_total",
			Help: "Lesson completions recorded",
		},
	)

	AssessmentsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnpath_assessments_started_total",
			Help: "Test-out assessment sessions started",
		},
	)

	AssessmentsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnpath_assessments_completed_total",
			Help: "Test-out assessment sessions finished, by result",
		},
		[]string{"result"}, // passed, failed, timed_out, abandoned
	)

	QuickReviewsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnpath_quick_reviews_started_total",
			Help: "Quick review sessions started",
		},
	)

	QuickReviewsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnpath_quick_reviews_completed_total",
			Help: "Quick review sessions completed",
		},
	)

	SuggestionEvals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnpath_suggestion_evaluations_total",
			Help: "Adaptive suggestion evaluations",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(PathBuilds)
	prometheus.MustRegister(LessonsCompleted)
	prometheus.MustRegister(AssessmentsStarted)
	prometheus.MustRegister(AssessmentsCompleted)
	prometheus.MustRegister(QuickReviewsStarted)
	prometheus.MustRegister(QuickReviewsCompleted)
	prometheus.MustRegister(SuggestionEvals)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
