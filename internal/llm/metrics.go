package llm

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
	outcomeError       = "error"
)

// InstrumentedGateway records call counts and latency for another Gateway.
type InstrumentedGateway struct {
	next     Gateway
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewInstrumentedGateway wraps next and registers its collectors on reg.
func NewInstrumentedGateway(next Gateway, reg prometheus.Registerer) (*InstrumentedGateway, error) {
	g := &InstrumentedGateway{
		next: next,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of completion requests sent to the LLM provider.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Latency of completion requests sent to the LLM provider.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		}),
	}

	for _, c := range []prometheus.Collector{g.requests, g.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *InstrumentedGateway) Configured() bool {
	return g.next.Configured()
}

func (g *InstrumentedGateway) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := g.next.Complete(ctx, prompt)
	g.duration.Observe(time.Since(start).Seconds())

	outcome := outcomeOK
	switch {
	case err == nil:
	case errors.Is(err, ErrProviderUnavailable):
		outcome = outcomeUnavailable
	default:
		outcome = outcomeError
	}
	g.requests.WithLabelValues(outcome).Inc()
	return out, err
}
