package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector files enqueue their metrics from init(); MustRegister flushes the
// queue into the default registry exactly once, so importing this package
// never panics on double registration.

var (
	regOnce sync.Once
	pending []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

func MustRegister() {
	regOnce.Do(func() {
		prometheus.MustRegister(pending...)
		pending = nil
	})
}
