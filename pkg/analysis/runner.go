// Package analysis wraps the external evaluation-analysis script behind a
// narrow interface. The statistical methodology lives in the script itself;
// this package only owns process lifecycle, timeout and output handling.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "avalia",
		Subsystem: "analysis",
		Name:      "run_duration_seconds",
		Help:      "Duration of analysis script executions",
		Buckets:   prometheus.DefBuckets,
	})

	runTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "avalia",
		Subsystem: "analysis",
		Name:      "run_timeouts_total",
		Help:      "Number of analysis runs that hit the timeout",
	})

	runFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "avalia",
		Subsystem: "analysis",
		Name:      "run_failures_total",
		Help:      "Number of analysis runs that resulted in an error",
	})
)

// Typed runner failures. Handlers map all of them to an opaque 500; the
// distinction exists for logging and metrics.
var (
	ErrTimeout       = errors.New("analysis run timed out")
	ErrScriptFailed  = errors.New("analysis script failed")
	ErrInvalidOutput = errors.New("analysis script produced invalid output")
)

// Runner produces an aggregated report for the given filters.
type Runner interface {
	Run(ctx context.Context, institutionID, courseID, period string) (json.RawMessage, error)
}

// Config groups script runner configuration values.
type Config struct {
	PythonPath string
	ScriptPath string
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// ScriptRunner executes the analysis script as a subprocess.
type ScriptRunner struct {
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewScriptRunner constructs a subprocess-backed runner.
func NewScriptRunner(cfg Config) (*ScriptRunner, error) {
	if cfg.ScriptPath == "" {
		return nil, fmt.Errorf("analysis script path must not be empty")
	}

	if cfg.PythonPath == "" {
		cfg.PythonPath = "python3"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &ScriptRunner{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/avaliaedu/avalia-api/pkg/analysis"),
		logger: cfg.Logger.With().Str("component", "analysis_runner").Logger(),
	}, nil
}

// Run invokes the script with the filter arguments and parses its stdout as
// JSON. Empty filters default to "all", matching the script's contract.
func (r *ScriptRunner) Run(ctx context.Context, institutionID, courseID, period string) (json.RawMessage, error) {
	if institutionID == "" {
		institutionID = "all"
	}
	if courseID == "" {
		courseID = "all"
	}
	if period == "" {
		period = "all"
	}

	ctx, span := r.tracer.Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("analysis.institution_id", institutionID),
		attribute.String("analysis.course_id", courseID),
		attribute.String("analysis.period", period),
	))
	defer span.End()

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.cfg.PythonPath, r.cfg.ScriptPath, institutionID, courseID, period)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)
	runDuration.Observe(duration.Seconds())

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		runTimeouts.Inc()
		span.SetStatus(codes.Error, "timeout")
		r.logger.Error().Dur("duration", duration).Msg("analysis run timed out")
		return nil, ErrTimeout
	}

	if err != nil {
		runFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "script failed")
		r.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("analysis script failed")
		return nil, fmt.Errorf("%w: %v", ErrScriptFailed, err)
	}

	output := bytes.TrimSpace(stdout.Bytes())
	if !json.Valid(output) {
		runFailures.Inc()
		span.SetStatus(codes.Error, "invalid output")
		r.logger.Error().Msg("analysis script produced non-JSON output")
		return nil, ErrInvalidOutput
	}

	r.logger.Info().Dur("duration", duration).Msg("analysis run completed")

	return json.RawMessage(output), nil
}
