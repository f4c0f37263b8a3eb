package pipeline

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/chai2010/webp"
	"github.com/dunamismax/pixelopt/internal/domain"
	"github.com/nfnt/resize"
)

// stdlibTransformer is the pure-Go backend: nfnt Lanczos3 resampling,
// image/jpeg for baseline output and libwebp (via chai2010/webp) for WebP,
// fed the packed RGB buffer directly.
type stdlibTransformer struct{}

func (stdlibTransformer) Name() string {
	return "std"
}

func (stdlibTransformer) Resample(src []byte, srcWidth, srcHeight, dstWidth, dstHeight int) ([]byte, error) {
	img := rgbaFromRGB(src, srcWidth, srcHeight)
	out := resize.Resize(uint(dstWidth), uint(dstHeight), img, resize.Lanczos3)

	b := out.Bounds()
	if b.Dx() != dstWidth || b.Dy() != dstHeight {
		return nil, fmt.Errorf("resampler produced %dx%d, want %dx%d", b.Dx(), b.Dy(), dstWidth, dstHeight)
	}
	return rgbFromImage(out), nil
}

func (stdlibTransformer) Encode(pix []byte, width, height int, cc domain.CompressionConfig) ([]byte, error) {
	switch cc.Encoder {
	case domain.EncoderBaseline:
		var buf bytes.Buffer
		img := rgbaFromRGB(pix, width, height)
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(cc.Quality)}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), nil
	case domain.EncoderWebP:
		data, err := webp.EncodeRGB(packedRGB(pix, width, height), float32(cc.Quality))
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported encoder: %s", cc.Encoder)
	}
}
