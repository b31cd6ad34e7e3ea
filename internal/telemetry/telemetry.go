// Package telemetry records interview runtime metrics through OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/soyeahso/evaluet/internal/version"
)

const meterName = "github.com/soyeahso/evaluet"

// Recorder holds the runtime instruments. A nil *Recorder records nothing.
type Recorder struct {
	sessions       metric.Int64Counter
	turns          metric.Int64Counter
	synthFailures  metric.Int64Counter
	llmFallbacks   metric.Int64Counter
	talkOver       metric.Int64Counter
	reports        metric.Int64Counter
	duration       metric.Float64Histogram
	activeSessions metric.Int64UpDownCounter

	shutdown func(context.Context) error
}

// New builds a Recorder. When telemetry is disabled the instruments come from
// a no-op provider; otherwise metrics are pushed to an OTLP gRPC collector.
func New(ctx context.Context, cfg config.TelemetryConfig, log *logging.Logger) (*Recorder, error) {
	if !cfg.Enabled {
		return NewWithProvider(noop.NewMeterProvider())
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(version.Name),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	r, err := NewWithProvider(provider)
	if err != nil {
		return nil, err
	}
	r.shutdown = provider.Shutdown

	log.Sub("telemetry").Info().Str("endpoint", cfg.Endpoint).Msg("metrics export enabled")
	return r, nil
}

// NewWithProvider creates the instruments on an existing meter provider.
func NewWithProvider(mp metric.MeterProvider) (*Recorder, error) {
	meter := mp.Meter(meterName)
	r := &Recorder{}

	var err error
	if r.sessions, err = meter.Int64Counter("evaluet_sessions_total",
		metric.WithDescription("Interview sessions ended, by end reason"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}
	if r.activeSessions, err = meter.Int64UpDownCounter("evaluet_sessions_active",
		metric.WithDescription("Interview sessions currently connected"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating active sessions counter: %w", err)
	}
	if r.turns, err = meter.Int64Counter("evaluet_turns_total",
		metric.WithDescription("Dialogue turns appended, by role"),
		metric.WithUnit("{turn}"),
	); err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	if r.synthFailures, err = meter.Int64Counter("evaluet_synthesis_failures_total",
		metric.WithDescription("Sentences that could not be synthesized"),
		metric.WithUnit("{sentence}"),
	); err != nil {
		return nil, fmt.Errorf("creating synthesis failure counter: %w", err)
	}
	if r.llmFallbacks, err = meter.Int64Counter("evaluet_llm_fallbacks_total",
		metric.WithDescription("Model replies replaced by the fallback reply"),
		metric.WithUnit("{reply}"),
	); err != nil {
		return nil, fmt.Errorf("creating fallback counter: %w", err)
	}
	if r.talkOver, err = meter.Int64Counter("evaluet_talk_over_total",
		metric.WithDescription("Candidate utterances dropped because the interviewer was speaking, by interrupt intent"),
		metric.WithUnit("{utterance}"),
	); err != nil {
		return nil, fmt.Errorf("creating talk-over counter: %w", err)
	}
	if r.reports, err = meter.Int64Counter("evaluet_reports_total",
		metric.WithDescription("Report generation outcomes, by status"),
		metric.WithUnit("{report}"),
	); err != nil {
		return nil, fmt.Errorf("creating reports counter: %w", err)
	}
	if r.duration, err = meter.Float64Histogram("evaluet_session_duration_seconds",
		metric.WithDescription("Interview session duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return r, nil
}

// SessionStarted marks a session as connected.
func (r *Recorder) SessionStarted(ctx context.Context) {
	if r == nil {
		return
	}
	r.activeSessions.Add(ctx, 1)
}

// SessionEnded records the end reason and the session's wall time.
func (r *Recorder) SessionEnded(ctx context.Context, reason string, elapsed time.Duration) {
	if r == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String("reason", reason))
	r.activeSessions.Add(ctx, -1)
	r.sessions.Add(ctx, 1, opt)
	r.duration.Record(ctx, elapsed.Seconds(), opt)
}

// Turn counts one appended dialogue turn.
func (r *Recorder) Turn(ctx context.Context, role string) {
	if r == nil {
		return
	}
	r.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
}

// SynthesisFailed counts a sentence delivered without audio.
func (r *Recorder) SynthesisFailed(ctx context.Context) {
	if r == nil {
		return
	}
	r.synthFailures.Add(ctx, 1)
}

// LLMFallback counts a reply replaced by the fallback text.
func (r *Recorder) LLMFallback(ctx context.Context) {
	if r == nil {
		return
	}
	r.llmFallbacks.Add(ctx, 1)
}

// TalkOver counts an utterance that arrived while the interviewer held the
// floor. interrupt is the lexical interrupt classification of its text.
func (r *Recorder) TalkOver(ctx context.Context, interrupt bool) {
	if r == nil {
		return
	}
	r.talkOver.Add(ctx, 1, metric.WithAttributes(attribute.Bool("interrupt", interrupt)))
}

// Report counts a report generation outcome.
func (r *Recorder) Report(ctx context.Context, status string) {
	if r == nil {
		return
	}
	r.reports.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// Shutdown flushes and stops the exporter, if any.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r == nil || r.shutdown == nil {
		return nil
	}
	return r.shutdown(ctx)
}
