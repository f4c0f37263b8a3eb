package pipeline

import (
	"context"
	"fmt"

	"github.com/dunamismax/pixelopt/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Output struct {
	Path    string
	Width   int
	Height  int
	Format  string
	Bytes   int
	Resized bool
}

type Result struct {
	Outputs []Output
}

// Optimizer turns one source image into the variants described by a plan.
// Variants are produced strictly in order; the first failure stops the run
// and files already written stay on disk.
type Optimizer struct {
	transformer Transformer
	emitter     Emitter
	tracer      trace.Tracer
}

func NewOptimizer(transformer Transformer, emitter Emitter) *Optimizer {
	return &Optimizer{
		transformer: transformer,
		emitter:     emitter,
		tracer:      otel.Tracer("pixelopt/pipeline"),
	}
}

// NewLocalOptimizer uses the build's default backend and writes to disk.
func NewLocalOptimizer() (*Optimizer, error) {
	transformer, err := newTransformer()
	if err != nil {
		return nil, fmt.Errorf("build transformer: %w", err)
	}
	return NewOptimizer(transformer, LocalFileEmitter{}), nil
}

func (o *Optimizer) Backend() string {
	return o.transformer.Name()
}

// Process runs the plan against src. The returned Result lists the outputs
// written so far, also when an error is returned.
func (o *Optimizer) Process(ctx context.Context, plan domain.Plan, src domain.SourceImage) (Result, error) {
	if err := plan.Validate(); err != nil {
		return Result{}, err
	}
	if err := domain.CheckBufferShape(src.Pix, src.Width, src.Height); err != nil {
		return Result{}, fmt.Errorf("%w: source image: %v", domain.ErrConfiguration, err)
	}
	for i, target := range plan.Targets {
		if target.Width > src.Width || target.Height > src.Height {
			return Result{}, fmt.Errorf("%w: targets[%d] %dx%d exceeds source %dx%d",
				domain.ErrInvalidTarget, i, target.Width, target.Height, src.Width, src.Height)
		}
	}

	targets := plan.Targets
	if !plan.Resize() {
		if plan.Compression == nil {
			return Result{}, fmt.Errorf("%w: neither resize nor compression requested", domain.ErrConfiguration)
		}
		targets = []domain.TargetSpec{{Width: src.Width, Height: src.Height}}
	}

	out := Result{Outputs: make([]Output, 0, len(targets))}
	for _, target := range targets {
		written, err := o.variant(ctx, plan, src, target)
		if err != nil {
			return out, err
		}
		out.Outputs = append(out.Outputs, written)
	}
	return out, nil
}

func (o *Optimizer) variant(ctx context.Context, plan domain.Plan, src domain.SourceImage, target domain.TargetSpec) (Output, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.variant")
	defer span.End()
	span.SetAttributes(
		attribute.Int("variant.width", target.Width),
		attribute.Int("variant.height", target.Height),
		attribute.Bool("variant.resize", plan.Resize()),
		attribute.String("variant.backend", o.transformer.Name()),
	)

	fail := func(path string, err error) (Output, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "variant failed")
		return Output{}, &domain.VariantError{Width: target.Width, Path: path, Err: err}
	}

	path, err := OutputPath(plan.SourcePath, target.Width, plan.Compression)
	if err != nil {
		return fail("", err)
	}
	span.SetAttributes(attribute.String("variant.path", path))

	pix := src.Pix
	if plan.Resize() {
		pix, err = resample(o.transformer, src.Pix, src.Width, src.Height, target.Width, target.Height)
		if err != nil {
			return fail(path, err)
		}
	}

	var (
		data   []byte
		format string
	)
	if cc := plan.Compression; cc != nil {
		span.SetAttributes(
			attribute.String("variant.encoder", string(cc.Encoder)),
			attribute.Float64("variant.quality", cc.Quality),
		)
		data, err = compress(o.transformer, pix, target.Width, target.Height, *cc)
		format = formatForEncoder(cc.Encoder)
	} else {
		data, format, err = encodeContainer(pix, target.Width, target.Height, path)
	}
	if err != nil {
		return fail(path, err)
	}

	if o.emitter == nil {
		return fail(path, fmt.Errorf("%w: no emitter configured", domain.ErrConfiguration))
	}
	if err := o.emitter.Emit(ctx, path, data); err != nil {
		return fail(path, err)
	}

	span.SetAttributes(attribute.Int("variant.bytes", len(data)))
	span.SetStatus(codes.Ok, "written")
	return Output{
		Path:    path,
		Width:   target.Width,
		Height:  target.Height,
		Format:  format,
		Bytes:   len(data),
		Resized: plan.Resize(),
	}, nil
}
