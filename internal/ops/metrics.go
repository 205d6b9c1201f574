package ops

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/zeroout/internal/tensor"
)

// Metrics counts kernel constructions and invocations per op and dtype.
// A nil *Metrics records nothing.
type Metrics struct {
	invocations   *prometheus.CounterVec
	constructions *prometheus.CounterVec
}

// NewMetrics creates the executor counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "born_op_invocations_total",
				Help: "Total operator invocations by op, dtype and result",
			},
			[]string{"op", "dtype", "result"},
		),
		constructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "born_op_kernel_constructions_total",
				Help: "Total kernel constructions by op, dtype and result",
			},
			[]string{"op", "dtype", "result"},
		),
	}

	for _, c := range []prometheus.Collector{m.invocations, m.constructions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeInvocation(op string, dtype tensor.DataType, err error) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(op, dtype.String(), resultLabel(err)).Inc()
}

func (m *Metrics) observeConstruction(op string, dtype tensor.DataType, err error) {
	if m == nil {
		return
	}
	m.constructions.WithLabelValues(op, dtype.String(), resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	default:
		return "error"
	}
}
