package pipeline

import (
	"github.com/dunamismax/pixelopt/internal/domain"
)

// Transformer is the pixel backend: Lanczos resampling of RGB8 buffers and
// lossy encoding of them. Callers validate buffer shapes before calling.
type Transformer interface {
	Name() string
	Resample(src []byte, srcWidth, srcHeight, dstWidth, dstHeight int) ([]byte, error)
	Encode(pix []byte, width, height int, cc domain.CompressionConfig) ([]byte, error)
}

// formatForEncoder is the short format name recorded on outputs.
func formatForEncoder(enc domain.Encoder) string {
	switch enc {
	case domain.EncoderWebP:
		return "webp"
	default:
		return "jpeg"
	}
}

func jpegQuality(q float64) int {
	return clamp(int(q+0.5), 1, 100)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
