// Package metrics exposes domain counters for the dual-write protocol.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Compensation results.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

// Orphan kinds.
const (
	OrphanObject = "object"
)

// Recorder counts compensating actions and known storage leaks.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	compensations *prometheus.CounterVec
	orphans       *prometheus.CounterVec
}

// NewRecorder registers the domain counters on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "litedrive_compensations_total",
				Help: "Compensating object deletes run after a partial failure.",
			},
			[]string{"flow", "result"},
		),
		orphans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "litedrive_orphans_total",
				Help: "Objects or records left without their counterpart.",
			},
			[]string{"kind"},
		),
	}
	for _, c := range []prometheus.Collector{r.compensations, r.orphans} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Compensation records one compensating action for flow with its result.
func (r *Recorder) Compensation(flow, result string) {
	if r == nil {
		return
	}
	r.compensations.WithLabelValues(flow, result).Inc()
}

// Orphan records one leaked item of the given kind.
func (r *Recorder) Orphan(kind string) {
	if r == nil {
		return
	}
	r.orphans.WithLabelValues(kind).Inc()
}
