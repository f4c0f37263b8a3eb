package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dunamismax/pixelopt/internal/config"
	"github.com/dunamismax/pixelopt/internal/domain"
	"github.com/dunamismax/pixelopt/internal/id"
	"github.com/dunamismax/pixelopt/internal/pipeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Request is what the command line asks for. Quality and Encoder are nil
// when not given.
type Request struct {
	SourcePath string
	Widths     []int
	Quality    *float64
	Encoder    *domain.Encoder
}

type processor interface {
	Process(ctx context.Context, plan domain.Plan, src domain.SourceImage) (pipeline.Result, error)
	Backend() string
}

// Runner hosts a single optimization: decode, plan, process, then report.
type Runner struct {
	logger      *log.Logger
	decoder     pipeline.Decoder
	optimizer   processor
	defaults    config.DefaultsConfig
	metricsFile string
	metrics     *metrics
	tracer      trace.Tracer
}

func New(logger *log.Logger, decoder pipeline.Decoder, optimizer processor, defaults config.DefaultsConfig, metricsFile string) *Runner {
	if logger == nil {
		logger = log.New(os.Stderr, "[pixelopt] ", log.LstdFlags|log.Lmsgprefix)
	}
	return &Runner{
		logger:      logger,
		decoder:     decoder,
		optimizer:   optimizer,
		defaults:    defaults,
		metricsFile: metricsFile,
		metrics:     newMetrics(),
		tracer:      otel.Tracer("pixelopt/runner"),
	}
}

// NewLocal wires the local file decoder and the build's default backend.
func NewLocal(logger *log.Logger, cfg config.Config) (*Runner, error) {
	optimizer, err := pipeline.NewLocalOptimizer()
	if err != nil {
		return nil, fmt.Errorf("initialize optimizer: %w", err)
	}
	return New(logger, pipeline.LocalFileDecoder{}, optimizer, cfg.Defaults, cfg.Telemetry.MetricsFile), nil
}

// Run executes req. On failure the returned Result still lists the variants
// written before the error; they are not removed.
func (r *Runner) Run(ctx context.Context, req Request) (pipeline.Result, domain.RunUsage, error) {
	startedAt := time.Now()
	runID := id.New()
	outcome := statusFailed

	ctx, span := r.tracer.Start(ctx, "runner.optimize")
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.source", req.SourcePath),
		attribute.Int("run.widths", len(req.Widths)),
		attribute.String("run.backend", r.optimizer.Backend()),
	)
	defer span.End()

	var result pipeline.Result
	defer func() {
		elapsed := time.Since(startedAt)
		r.metrics.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
		r.metrics.runsTotal.WithLabelValues(outcome).Inc()
		r.flushMetrics()
	}()

	fail := func(err error) (pipeline.Result, domain.RunUsage, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		r.logger.Printf("run failed run_id=%s source=%s written=%d err=%v", runID, req.SourcePath, len(result.Outputs), err)
		return result, r.recordUsage(runID, result, 0, time.Since(startedAt)), err
	}

	if len(req.Widths) == 0 && req.Quality == nil {
		return fail(fmt.Errorf("%w: either widths or quality must be provided", domain.ErrConfiguration))
	}

	r.logger.Printf(
		"optimizing run_id=%s source=%s widths=%v backend=%s",
		runID,
		req.SourcePath,
		req.Widths,
		r.optimizer.Backend(),
	)

	src, err := r.decoder.Decode(ctx, req.SourcePath)
	if err != nil {
		return fail(err)
	}

	plan, err := r.buildPlan(req, src)
	if err != nil {
		return fail(err)
	}
	if cc := plan.Compression; cc != nil {
		span.SetAttributes(
			attribute.String("run.encoder", string(cc.Encoder)),
			attribute.Float64("run.quality", cc.Quality),
		)
	}

	result, err = r.optimizer.Process(ctx, plan, src)
	if err != nil {
		return fail(err)
	}

	var sourceBytes int64
	if info, err := os.Stat(req.SourcePath); err == nil {
		sourceBytes = info.Size()
	}
	usage := r.recordUsage(runID, result, sourceBytes, time.Since(startedAt))

	outcome = statusSucceeded
	span.SetStatus(codes.Ok, "optimized")
	r.logger.Printf(
		"optimized run_id=%s variants=%d bytes_written=%d elapsed_ms=%d",
		runID,
		usage.Variants,
		usage.BytesWritten,
		usage.ComputeTimeMS,
	)
	return result, usage, nil
}

func (r *Runner) buildPlan(req Request, src domain.SourceImage) (domain.Plan, error) {
	b := domain.NewPlanBuilder(req.SourcePath, src.Width, src.Height).
		Widths(req.Widths...).
		ScalePolicy(r.defaults.ScalePolicy)

	if req.Quality != nil {
		b.Quality(*req.Quality)
		if req.Encoder == nil {
			b.Encoder(r.defaults.Encoder)
		}
	}
	if req.Encoder != nil {
		b.Encoder(*req.Encoder)
		if req.Quality == nil {
			b.Quality(r.defaults.Quality)
		}
	}
	return b.Build()
}

func (r *Runner) recordUsage(runID string, result pipeline.Result, sourceBytes int64, elapsed time.Duration) domain.RunUsage {
	usage := domain.RunUsage{
		RunID:         runID,
		Variants:      len(result.Outputs),
		SourceBytes:   sourceBytes,
		ComputeTimeMS: max(1, elapsed.Milliseconds()),
		CreatedAt:     time.Now().UTC(),
	}
	for _, out := range result.Outputs {
		usage.PixelsProcessed += int64(out.Width * out.Height)
		usage.BytesWritten += int64(out.Bytes)
		r.metrics.variantsTotal.WithLabelValues(out.Format).Inc()
	}
	if sourceBytes > usage.BytesWritten {
		usage.BytesSaved = sourceBytes - usage.BytesWritten
	}

	r.metrics.bytesWrittenTotal.Add(float64(usage.BytesWritten))
	r.metrics.pixelsProcessedTotal.Add(float64(usage.PixelsProcessed))
	r.metrics.bytesSavedTotal.Add(float64(usage.BytesSaved))
	return usage
}

func (r *Runner) flushMetrics() {
	if r.metricsFile == "" {
		return
	}
	if err := r.metrics.writeTextfile(r.metricsFile); err != nil {
		r.logger.Printf("metrics flush failed path=%s err=%v", r.metricsFile, err)
	}
}
