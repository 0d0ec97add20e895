package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "dot"

// Metrics holds all OTEL metric instruments for dot.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// tmux state counters
	StateSaves      metric.Int64Counter
	StateLoads      metric.Int64Counter
	WindowsSaved    metric.Int64Counter
	WindowsCreated  metric.Int64Counter
	ClaudeResumed   metric.Int64Counter
	StaleMapEntries metric.Int64Counter

	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	// --- tmux state counters ---

	m.StateSaves, err = meter.Int64Counter("tmux_state.saves",
		metric.WithDescription("Number of tmux state snapshots written"))
	if err != nil {
		return nil, err
	}

	m.StateLoads, err = meter.Int64Counter("tmux_state.loads",
		metric.WithDescription("Number of tmux state snapshots restored"))
	if err != nil {
		return nil, err
	}

	m.WindowsSaved, err = meter.Int64Counter("tmux_state.windows_saved",
		metric.WithDescription("Windows captured into snapshots"))
	if err != nil {
		return nil, err
	}

	m.WindowsCreated, err = meter.Int64Counter("tmux_state.windows_created",
		metric.WithDescription("Windows recreated during restore"))
	if err != nil {
		return nil, err
	}

	m.ClaudeResumed, err = meter.Int64Counter("tmux_state.claude_resumed",
		metric.WithDescription("Claude sessions resumed during restore"))
	if err != nil {
		return nil, err
	}

	m.StaleMapEntries, err = meter.Int64Counter("tmux_state.stale_map_entries",
		metric.WithDescription("Stale claude map entries garbage-collected"))
	if err != nil {
		return nil, err
	}

	// --- LLM token counters ---

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSave records a completed state save.
func (m *Metrics) RecordSave(ctx context.Context, windows, staleRemoved int) {
	if m == nil {
		return
	}
	m.StateSaves.Add(ctx, 1)
	m.WindowsSaved.Add(ctx, int64(windows))
	if staleRemoved > 0 {
		m.StaleMapEntries.Add(ctx, int64(staleRemoved))
	}
}

// RecordLoad records a completed state load.
func (m *Metrics) RecordLoad(ctx context.Context, windowsCreated, resumed int) {
	if m == nil {
		return
	}
	m.StateLoads.Add(ctx, 1)
	m.WindowsCreated.Add(ctx, int64(windowsCreated))
	m.ClaudeResumed.Add(ctx, int64(resumed))
}

// RecordTokens records LLM token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}
