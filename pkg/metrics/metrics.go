// Package metrics exposes dispatch counters and latencies in the
// prometheus format.
package metrics

import (
	"io"
	"time"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "fileroutes"

// Outcome label values
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var buckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5}

// Metrics records dispatches. It implements routes.Observer.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Files dispatched through the router",
			},
			[]string{"method", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent dispatching one file",
				Buckets:   buckets,
			},
			[]string{"method"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.dispatchTotal, m.dispatchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, errors.ErrAlreadyExists, "registering metrics")
		}
	}
	return m, nil
}

// ObserveDispatch records one dispatch
func (m *Metrics) ObserveDispatch(method string, elapsed time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.dispatchTotal.WithLabelValues(method, outcome).Inc()
	m.dispatchDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// WriteText renders everything g gathers in the text exposition format
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "gathering metrics")
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "encoding metrics")
		}
	}
	return nil
}
