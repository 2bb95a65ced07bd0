package metrics

import "github.com/prometheus/client_golang/prometheus"

// DiscoveryCacheTotal counts cache lookups per discovery operation.
// Labels: op ("alerts", "nearby", "search"), result ("hit", "miss").
// Registered explicitly from main (no init()) and passed to the services,
// so tests can run them with a nil counter.
var DiscoveryCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "okani",
		Name:      "discovery_cache_total",
		Help:      "Discovery cache lookups by operation and result",
	},
	[]string{"op", "result"},
)

// RegisterDiscoveryMetrics registers the discovery counters.
func RegisterDiscoveryMetrics() {
	prometheus.MustRegister(DiscoveryCacheTotal)
}
