// Package metrics expone las métricas del motor en formato Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

var _ inventory.Recorder = (*Recorder)(nil)

// Recorder colectores del motor de transiciones.
type Recorder struct {
	transitions *prometheus.CounterVec
	quantity    *prometheus.CounterVec
	clamped     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	promoted    prometheus.Counter
	promoteRuns prometheus.Counter
}

// NewRecorder crea y registra los colectores en reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lot_transitions_total",
			Help: "Transiciones de lotes ejecutadas por arista.",
		}, []string{"from", "to"}),
		quantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lot_transition_quantity_total",
			Help: "Cantidad movida por arista.",
		}, []string{"from", "to"}),
		clamped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lot_counter_clamped_total",
			Help: "Salidas que superaron el contador y se recortaron a cero.",
		}, []string{"state"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lot_operation_failures_total",
			Help: "Operaciones del motor fallidas por tipo de error.",
		}, []string{"operation", "kind"}),
		promoted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lot_promoted_total",
			Help: "Lotes promovidos por tiempo.",
		}),
		promoteRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lot_promotion_runs_total",
			Help: "Ejecuciones de la promoción por tiempo.",
		}),
	}
	reg.MustRegister(r.transitions, r.quantity, r.clamped, r.failures, r.promoted, r.promoteRuns)
	return r
}

func (r *Recorder) Transition(from, to entity.State, quantity int64) {
	r.transitions.WithLabelValues(from.String(), to.String()).Inc()
	r.quantity.WithLabelValues(from.String(), to.String()).Add(float64(quantity))
}

func (r *Recorder) Clamped(state entity.State) {
	r.clamped.WithLabelValues(state.String()).Inc()
}

func (r *Recorder) OperationFailed(op string, kind domain.ErrorKind) {
	r.failures.WithLabelValues(op, string(kind)).Inc()
}

func (r *Recorder) Promoted(count int) {
	r.promoteRuns.Inc()
	r.promoted.Add(float64(count))
}
