// Package metrics expone contadores Prometheus del motor de acasalamientos.
//
// Uso:
//
//	metrics.RecordEvaluation("A", true, 0)
//	metrics.RecordBatch("rank", 120*time.Millisecond, 5)
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal cuenta evaluaciones hembra x toro por grado.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genefy_pairing_evaluations_total",
			Help: "Total number of female x sire evaluations by grade",
		},
		[]string{"grade"},
	)

	// VerdictsTotal separa evaluaciones aceptables de rechazadas.
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genefy_pairing_verdicts_total",
			Help: "Total number of pairing verdicts by outcome",
		},
		[]string{"acceptable"},
	)

	// LethalHaplotypeHitsTotal cuenta hallazgos Carrier x Carrier.
	LethalHaplotypeHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genefy_lethal_haplotype_hits_total",
			Help: "Total number of carrier x carrier haplotype findings",
		},
	)

	// BatchDuration mide rankings y lotes completos.
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genefy_batch_duration_seconds",
			Help:    "Duration of sire ranking and batch matching runs",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"kind"},
	)

	// BatchRecommendations cuenta pares recomendados por lotes.
	BatchRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genefy_batch_recommendations_total",
			Help: "Total number of pairings returned by ranking runs",
		},
		[]string{"kind"},
	)

	// RateLimitedTotal cuenta solicitudes de lote rechazadas por límite de tasa.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genefy_batch_rate_limited_total",
			Help: "Total number of batch requests rejected by the rate limiter",
		},
	)
)

// RecordEvaluation registra el resultado de una evaluación.
func RecordEvaluation(grade string, acceptable bool, lethalHits int) {
	EvaluationsTotal.WithLabelValues(grade).Inc()
	VerdictsTotal.WithLabelValues(strconv.FormatBool(acceptable)).Inc()
	if lethalHits > 0 {
		LethalHaplotypeHitsTotal.Add(float64(lethalHits))
	}
}

// RecordBatch registra la duración de un ranking ("rank") o lote ("batch").
func RecordBatch(kind string, d time.Duration, recommended int) {
	BatchDuration.WithLabelValues(kind).Observe(d.Seconds())
	BatchRecommendations.WithLabelValues(kind).Add(float64(recommended))
}

// RecordRateLimited registra un rechazo del limitador de lotes.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}
