package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tbxark/depositagent/types"
)

type BreakerSettings struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "extraction",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// BreakerExtractor stops calling next after repeated failures. While open it
// fails fast with gobreaker.ErrOpenState.
type BreakerExtractor struct {
	next Extractor
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerExtractor(next Extractor, settings BreakerSettings) *BreakerExtractor {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerExtractor{next: next, cb: cb}
}

func (e *BreakerExtractor) Extract(ctx context.Context, req *Request) (types.Extraction, error) {
	out, err := e.cb.Execute(func() (interface{}, error) {
		return e.next.Extract(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return out.(types.Extraction), nil
}

func (e *BreakerExtractor) State() gobreaker.State {
	return e.cb.State()
}
