package domain

import (
	"fmt"
	"math"
	"strings"
)

// ScalePolicy selects how a target height is derived from a target width.
type ScalePolicy string

const (
	// ScaleTruncate divides by an integer scaling factor. Heights are only
	// exact when the target width evenly divides the source width.
	ScaleTruncate ScalePolicy = "truncate"
	// ScaleProportional rounds the exact proportional height.
	ScaleProportional ScalePolicy = "proportional"
)

func ParseScalePolicy(s string) (ScalePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ScaleTruncate):
		return ScaleTruncate, nil
	case string(ScaleProportional), "round", "exact":
		return ScaleProportional, nil
	default:
		return "", fmt.Errorf("%w: unsupported scale policy %q", ErrConfiguration, s)
	}
}

// TargetHeight computes the height matching targetWidth for a source of
// sourceWidth x sourceHeight. Upscaling is rejected.
func TargetHeight(sourceWidth, sourceHeight, targetWidth int, policy ScalePolicy) (int, error) {
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return 0, fmt.Errorf("%w: source dimensions %dx%d", ErrInvalidTarget, sourceWidth, sourceHeight)
	}
	if targetWidth <= 0 {
		return 0, fmt.Errorf("%w: width %d must be positive", ErrInvalidTarget, targetWidth)
	}
	if targetWidth > sourceWidth {
		return 0, fmt.Errorf("%w: width %d exceeds source width %d", ErrInvalidTarget, targetWidth, sourceWidth)
	}

	var height int
	switch policy {
	case ScaleProportional:
		height = int(math.Round(float64(sourceHeight) * float64(targetWidth) / float64(sourceWidth)))
	default:
		factor := sourceWidth / targetWidth
		height = sourceHeight / factor
	}

	if height <= 0 {
		return 0, fmt.Errorf("%w: width %d scales source height %d to zero", ErrInvalidTarget, targetWidth, sourceHeight)
	}
	return height, nil
}
