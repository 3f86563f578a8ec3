package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joepages_generations_total",
		Help: "Model generation attempts by provider and outcome.",
	}, []string{"provider", "outcome"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "joepages_generation_duration_seconds",
		Help:    "Time spent waiting on the model for one generation.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"provider"})

	GenerateRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joepages_generate_rejected_total",
		Help: "Generate requests rejected before calling the model.",
	}, []string{"reason"})

	PreviewsComposedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joepages_previews_composed_total",
		Help: "Preview documents composed after the quiet period.",
	})

	WorkspacesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joepages_workspaces_active",
		Help: "Workspaces currently held in memory.",
	})

	PreviewSocketsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joepages_preview_sockets_active",
		Help: "Open websocket connections receiving preview updates.",
	})
)
