// Package metrics exports Prometheus collectors for the provisioning console.
//
// Import Path: hostconsole.io/provisioning/internal/metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"hostconsole.io/provisioning/internal/domain"
	"hostconsole.io/provisioning/internal/pxeloader"
)

const namespace = "provisioning"

// LoaderObserver counts loader resolutions and recommendations.
type LoaderObserver struct {
	resolutions *prometheus.CounterVec
	selections  *prometheus.CounterVec
}

var _ pxeloader.Observer = (*LoaderObserver)(nil)

// NewLoaderObserver creates the collectors and registers them with reg.
func NewLoaderObserver(reg prometheus.Registerer) (*LoaderObserver, error) {
	o := &LoaderObserver{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pxe_loader",
			Name:      "resolutions_total",
			Help:      "Host loader identifiers resolved, by match strategy and kind.",
		}, []string{"strategy", "kind"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pxe_loader",
			Name:      "selections_total",
			Help:      "Preferred loader recommendations, by chosen kind.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{o.resolutions, o.selections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveResolution implements pxeloader.Observer.
func (o *LoaderObserver) ObserveResolution(strategy pxeloader.MatchStrategy, kind domain.LoaderKind) {
	o.resolutions.WithLabelValues(string(strategy), kindLabel(kind)).Inc()
}

// ObserveSelection implements pxeloader.Observer.
func (o *LoaderObserver) ObserveSelection(kind domain.LoaderKind, ok bool) {
	if !ok {
		kind = ""
	}
	o.selections.WithLabelValues(kindLabel(kind)).Inc()
}

func kindLabel(kind domain.LoaderKind) string {
	if kind == "" {
		return "none"
	}
	return string(kind)
}
