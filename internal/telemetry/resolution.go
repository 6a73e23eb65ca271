package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution kinds
const (
	KindMetadata = "metadata"
	KindLink     = "link"
)

var (
	// 장소 해석 결과 (kind: metadata|link, outcome: created|existing|cached|link_only|no_candidate|client_error|failed)
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeemode_resolutions_total",
			Help: "Total number of place resolutions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// 장소 상세 캐시 hit/miss
	placeCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeemode_place_cache_total",
			Help: "Place detail cache lookups by result",
		},
		[]string{"result"},
	)

	// Google Places API 호출 수
	providerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeemode_provider_calls_total",
			Help: "Calls to the external place provider by operation and status",
		},
		[]string{"operation", "status"},
	)
)

// RecordResolution counts one finished resolution
func RecordResolution(kind, outcome string) {
	resolutionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordPlaceCache counts a cache lookup
func RecordPlaceCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	placeCacheTotal.WithLabelValues(result).Inc()
}

// RecordProviderCall counts one provider request (after retries)
func RecordProviderCall(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	providerCallsTotal.WithLabelValues(operation, status).Inc()
}
