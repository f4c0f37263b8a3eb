//go:build govips && cgo

package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/dunamismax/pixelopt/internal/domain"
)

type govipsTransformer struct{}

func (govipsTransformer) Name() string {
	return "govips"
}

func (t govipsTransformer) Resample(src []byte, srcWidth, srcHeight, dstWidth, dstHeight int) ([]byte, error) {
	img, err := loadGovipsImage(src, srcWidth, srcHeight)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	hScale := float64(dstWidth) / float64(srcWidth)
	vScale := float64(dstHeight) / float64(srcHeight)
	if err := img.ResizeWithVScale(hScale, vScale, vips.KernelLanczos3); err != nil {
		return nil, fmt.Errorf("resize image: %w", err)
	}
	if img.Width() != dstWidth || img.Height() != dstHeight {
		return nil, fmt.Errorf("libvips produced %dx%d, want %dx%d", img.Width(), img.Height(), dstWidth, dstHeight)
	}

	data, _, err := img.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("export resized image: %w", err)
	}
	out, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode resized image: %w", err)
	}
	return rgbFromImage(out), nil
}

func (t govipsTransformer) Encode(pix []byte, width, height int, cc domain.CompressionConfig) ([]byte, error) {
	img, err := loadGovipsImage(pix, width, height)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	switch cc.Encoder {
	case domain.EncoderBaseline:
		params := vips.NewJpegExportParams()
		params.Quality = jpegQuality(cc.Quality)
		data, _, err := img.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return data, nil
	case domain.EncoderWebP:
		params := vips.NewWebpExportParams()
		params.Quality = clamp(int(cc.Quality+0.5), 0, 100)
		params.Lossless = false
		data, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported encoder: %s", cc.Encoder)
	}
}

// loadGovipsImage hands the raw buffer to libvips through a lossless PNG.
func loadGovipsImage(pix []byte, width, height int) (*vips.ImageRef, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgbaFromRGB(pix, width, height)); err != nil {
		return nil, fmt.Errorf("stage raw pixels: %w", err)
	}
	img, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("load raw pixels: %w", err)
	}
	return img, nil
}
