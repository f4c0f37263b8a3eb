package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Encoder names the lossy codec used when compression is requested.
type Encoder string

const (
	EncoderBaseline Encoder = "baseline"
	EncoderWebP     Encoder = "webp"

	DefaultQuality = 75.0
	DefaultEncoder = EncoderBaseline
)

func ParseEncoder(s string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(EncoderBaseline), "jpeg", "jpg", "mozjpeg":
		return EncoderBaseline, nil
	case string(EncoderWebP):
		return EncoderWebP, nil
	default:
		return "", fmt.Errorf("%w: unsupported encoder %q", ErrConfiguration, s)
	}
}

// CompressionConfig applies identically to every variant of a run.
type CompressionConfig struct {
	Quality float64
	Encoder Encoder
}

// QualityLabel renders the quality the way it appears in output file names:
// whole numbers without a fractional part, otherwise the shortest exact form.
func (c CompressionConfig) QualityLabel() string {
	return strconv.FormatFloat(c.Quality, 'f', -1, 64)
}

type TargetSpec struct {
	Width  int
	Height int
}

// Plan is the frozen configuration of one run. Targets keeps request order
// and may contain duplicates. A nil Compression means raw re-save.
type Plan struct {
	SourcePath  string
	Targets     []TargetSpec
	Compression *CompressionConfig
}

// Resize reports whether the run resizes. It is all-or-nothing per run.
func (p Plan) Resize() bool {
	return len(p.Targets) > 0
}

func (p Plan) Validate() error {
	if strings.TrimSpace(p.SourcePath) == "" {
		return fmt.Errorf("%w: source path is required", ErrConfiguration)
	}
	if len(p.Targets) == 0 && p.Compression == nil {
		return fmt.Errorf("%w: nothing to do, either widths or quality must be provided", ErrConfiguration)
	}
	for i, t := range p.Targets {
		if t.Width <= 0 || t.Height <= 0 {
			return fmt.Errorf("%w: targets[%d] has invalid dimensions %dx%d", ErrInvalidTarget, i, t.Width, t.Height)
		}
	}
	if p.Compression != nil {
		if err := validateQuality(p.Compression.Quality); err != nil {
			return err
		}
		if _, err := ParseEncoder(string(p.Compression.Encoder)); err != nil {
			return err
		}
	}
	return nil
}

// PlanBuilder stages the settings of a run. Build freezes them into a Plan.
type PlanBuilder struct {
	sourcePath   string
	sourceWidth  int
	sourceHeight int
	widths       []int
	quality      *float64
	encoder      *Encoder
	policy       ScalePolicy
}

func NewPlanBuilder(sourcePath string, sourceWidth, sourceHeight int) *PlanBuilder {
	return &PlanBuilder{
		sourcePath:   sourcePath,
		sourceWidth:  sourceWidth,
		sourceHeight: sourceHeight,
		policy:       ScaleTruncate,
	}
}

func (b *PlanBuilder) Widths(widths ...int) *PlanBuilder {
	b.widths = append(b.widths, widths...)
	return b
}

func (b *PlanBuilder) Quality(q float64) *PlanBuilder {
	b.quality = &q
	return b
}

func (b *PlanBuilder) Encoder(e Encoder) *PlanBuilder {
	b.encoder = &e
	return b
}

func (b *PlanBuilder) ScalePolicy(p ScalePolicy) *PlanBuilder {
	b.policy = p
	return b
}

func (b *PlanBuilder) Build() (Plan, error) {
	plan := Plan{SourcePath: b.sourcePath}

	if b.quality != nil || b.encoder != nil {
		cc := CompressionConfig{Quality: DefaultQuality, Encoder: DefaultEncoder}
		if b.quality != nil {
			cc.Quality = *b.quality
		}
		if b.encoder != nil {
			cc.Encoder = *b.encoder
		}
		plan.Compression = &cc
	}

	if len(b.widths) > 0 {
		var errs []error
		plan.Targets = make([]TargetSpec, 0, len(b.widths))
		for _, w := range b.widths {
			h, err := TargetHeight(b.sourceWidth, b.sourceHeight, w, b.policy)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			plan.Targets = append(plan.Targets, TargetSpec{Width: w, Height: h})
		}
		if len(errs) > 0 {
			return Plan{}, errors.Join(errs...)
		}
	}

	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func validateQuality(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 || q > 100 {
		return fmt.Errorf("%w: quality %v must be within [0, 100]", ErrConfiguration, q)
	}
	return nil
}
