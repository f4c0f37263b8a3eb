package pipeline

import (
	"errors"
	"fmt"

	"github.com/dunamismax/pixelopt/internal/domain"
)

// resample validates both shapes and runs the backend's Lanczos filter.
// A same-size request still runs through the backend.
func resample(t Transformer, src []byte, srcWidth, srcHeight, dstWidth, dstHeight int) ([]byte, error) {
	if err := domain.CheckBufferShape(src, srcWidth, srcHeight); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResize, err)
	}
	if dstWidth <= 0 || dstHeight <= 0 {
		return nil, fmt.Errorf("%w: cannot build resampler for %dx%d -> %dx%d", domain.ErrResize, srcWidth, srcHeight, dstWidth, dstHeight)
	}

	out, err := guard(func() ([]byte, error) {
		return t.Resample(src, srcWidth, srcHeight, dstWidth, dstHeight)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResize, err)
	}
	if err := domain.CheckBufferShape(out, dstWidth, dstHeight); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResize, err)
	}
	return out, nil
}

// compress encodes pix with the configured lossy encoder. Backend panics
// (libwebp/libvips aborts surface as Go panics) become ErrCompressionFailed.
func compress(t Transformer, pix []byte, width, height int, cc domain.CompressionConfig) ([]byte, error) {
	if err := domain.CheckBufferShape(pix, width, height); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompressionFailed, err)
	}

	out, err := guard(func() ([]byte, error) {
		return t.Encode(pix, width, height, cc)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s encoder: %v", domain.ErrCompressionFailed, cc.Encoder, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s encoder produced no data", domain.ErrCompressionFailed, cc.Encoder)
	}
	return out, nil
}

var errAborted = errors.New("aborted")

func guard(fn func() ([]byte, error)) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", errAborted, r)
		}
	}()
	return fn()
}
