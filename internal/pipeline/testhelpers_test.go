package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"testing"

	"github.com/dunamismax/pixelopt/internal/domain"
	"github.com/stretchr/testify/require"
)

// gradientRGB builds a w x h packed RGB gradient.
func gradientRGB(w, h int) []byte {
	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix = append(pix, uint8((x*255)/w), uint8((y*255)/h), 140)
		}
	}
	return pix
}

func gradientSource(t testing.TB, w, h int) domain.SourceImage {
	t.Helper()

	src, err := domain.NewSourceImage(gradientRGB(w, h), w, h)
	require.NoError(t, err)
	return src
}

func writeJPEGSource(t testing.TB, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 140,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func decodeFile(t testing.TB, path string) (image.Image, string) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, format, err := image.Decode(f)
	require.NoError(t, err, "decode %s", path)
	return img, format
}
