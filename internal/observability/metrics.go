package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	userCreatedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "users",
		Name:      "last_user_created_timestamp_seconds",
		Help:      "Unix timestamp of the most recent user created.",
	})
	exerciseLoggedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "exercises",
		Name:      "last_exercise_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise persisted.",
	})
	exercisesLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "exercises",
		Name:      "logged_total",
		Help:      "Number of exercises persisted.",
	})

	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests grouped by route, method and status.",
	}, []string{"route", "method", "status"})
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency grouped by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

func init() {
	prometheus.MustRegister(
		userCreatedGauge,
		exerciseLoggedGauge,
		exercisesLoggedCounter,
		requestCounter,
		requestDuration,
	)
}

// RecordUserCreated updates the user creation watermark gauge.
func RecordUserCreated(ts time.Time) {
	if ts.IsZero() {
		return
	}
	userCreatedGauge.Set(float64(ts.Unix()))
}

// RecordExerciseLogged bumps the exercise counter and watermark gauge.
func RecordExerciseLogged(ts time.Time) {
	exercisesLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	exerciseLoggedGauge.Set(float64(ts.Unix()))
}

// RecordRequest observes a completed HTTP request.
func RecordRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	requestCounter.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
