package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitgrid_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "habitgrid_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitgrid_errors_total",
			Help: "Total handler errors",
		},
		[]string{"handler", "type"},
	)

	ToggleCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitgrid_log_toggles_total",
			Help: "Habit log toggles by resulting state",
		},
		[]string{"completed"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, ErrorCount, ToggleCount)
}
