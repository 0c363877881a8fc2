package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tradingcoach/internal/model"
	"tradingcoach/pkg/llm"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Metrics receives one observation per vendor call.
type Metrics interface {
	ObserveVendorCall(vendor, outcome string, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveVendorCall(string, string, time.Duration) {}

// Result is the outcome of one vendor call. Exactly one of Analysis and Err is set.
type Result struct {
	Source   string
	Analysis *model.ChartAnalysis
	Err      error
}

// Dispatcher sends one chart to every configured vendor.
type Dispatcher struct {
	analyzers []llm.ChartAnalyzer
	timeout   time.Duration
	metrics   Metrics
}

func NewDispatcher(analyzers []llm.ChartAnalyzer, timeout time.Duration, metrics Metrics) *Dispatcher {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Dispatcher{
		analyzers: analyzers,
		timeout:   timeout,
		metrics:   metrics,
	}
}

func (d *Dispatcher) Sources() []string {
	names := make([]string, len(d.analyzers))
	for i, a := range d.analyzers {
		names[i] = a.Name()
	}
	return names
}

// Lookup finds a vendor by name, ignoring case.
func (d *Dispatcher) Lookup(name string) (llm.ChartAnalyzer, bool) {
	for _, a := range d.analyzers {
		if strings.EqualFold(a.Name(), name) {
			return a, true
		}
	}
	return nil, false
}

// Stream calls every vendor concurrently and delivers each result as soon as
// it is ready. The channel is closed once all vendors have reported.
func (d *Dispatcher) Stream(ctx context.Context, input llm.ChartInput) <-chan Result {
	out := make(chan Result, len(d.analyzers))

	var wg sync.WaitGroup
	for _, a := range d.analyzers {
		wg.Add(1)
		go func(a llm.ChartAnalyzer) {
			defer wg.Done()
			out <- d.Analyze(ctx, a, input)
		}(a)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Collect calls every vendor concurrently and returns once all have reported,
// in the order the vendors were configured.
func (d *Dispatcher) Collect(ctx context.Context, input llm.ChartInput) []Result {
	results := make([]Result, len(d.analyzers))

	var g errgroup.Group
	for i, a := range d.analyzers {
		g.Go(func() error {
			results[i] = d.Analyze(ctx, a, input)
			return nil
		})
	}
	g.Wait()

	return results
}

// Analyze runs a single vendor under the dispatcher's timeout and parses its reply.
func (d *Dispatcher) Analyze(ctx context.Context, a llm.ChartAnalyzer, input llm.ChartInput) Result {
	source := a.Name()
	start := time.Now()

	raw, err := llm.WithTimeout(ctx, d.timeout, func(ctx context.Context) (string, error) {
		return a.AnalyzeChart(ctx, input)
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, llm.ErrTimeout) {
			outcome = OutcomeTimeout
		}
		d.metrics.ObserveVendorCall(source, outcome, elapsed)
		slog.Warn("vendor analysis failed", "vendor", source, "outcome", outcome, "elapsed", elapsed, "error", err)
		return Result{Source: source, Err: err}
	}

	d.metrics.ObserveVendorCall(source, OutcomeSuccess, elapsed)
	slog.Info("vendor analysis complete", "vendor", source, "elapsed", elapsed, "chars", len(raw))

	analysis := Parse(source, raw)
	return Result{Source: source, Analysis: &analysis}
}
