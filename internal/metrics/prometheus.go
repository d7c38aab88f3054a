package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskRequests 는 task_type 별 요청 수다.
	TaskRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuraplay_task_requests_total",
			Help: "Total number of proxy requests by task type and HTTP status",
		},
		[]string{"task_type", "status"},
	)

	// TextOutcomes 는 텍스트 처리 종료 지점별 횟수다.
	TextOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuraplay_text_outcomes_total",
			Help: "Text generation results by terminating step",
		},
		[]string{"outcome"},
	)

	// ImageOutcomes 는 이미지 처리 결과별 횟수다.
	ImageOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuraplay_image_outcomes_total",
			Help: "Image generation results by outcome",
		},
		[]string{"outcome"},
	)

	// VoiceOutcomes 는 음성 처리 결과별 횟수다.
	VoiceOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuraplay_voice_outcomes_total",
			Help: "Voice synthesis results by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuraplay_upstream_attempts_total",
			Help: "Outbound provider attempts by host and result",
		},
		[]string{"host", "result"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuraplay_upstream_retries_total",
			Help: "Outbound provider retries by reason",
		},
		[]string{"reason"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neuraplay_upstream_attempt_duration_seconds",
			Help:    "Duration of a single outbound provider attempt",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"host"},
	)
)
