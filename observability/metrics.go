package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// FlashLiquidationMetrics counts flash liquidation callbacks segmented by
// adapter variant and settlement outcome. It satisfies the orchestrator's
// metrics sink interface.
type FlashLiquidationMetrics struct {
	liquidations *prometheus.CounterVec
}

var (
	flashMetricsOnce sync.Once
	flashRegistry    *FlashLiquidationMetrics
)

// FlashMetrics returns the lazily-initialised liquidation metrics registry.
func FlashMetrics() *FlashLiquidationMetrics {
	flashMetricsOnce.Do(func() {
		flashRegistry = &FlashLiquidationMetrics{
			liquidations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "tenorfi",
				Subsystem: "flash",
				Name:      "liquidations_total",
				Help:      "Flash liquidation callbacks segmented by variant and outcome.",
			}, []string{"variant", "outcome"}),
		}
		prometheus.MustRegister(flashRegistry.liquidations)
	})
	return flashRegistry
}

// ObserveLiquidation records one callback result.
func (m *FlashLiquidationMetrics) ObserveLiquidation(variant, outcome string) {
	if m == nil {
		return
	}
	m.liquidations.WithLabelValues(variant, outcome).Inc()
}
