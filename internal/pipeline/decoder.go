package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixelopt/internal/domain"
	xwebp "golang.org/x/image/webp"
)

// Decoder supplies the source image of a run.
type Decoder interface {
	Decode(ctx context.Context, path string) (domain.SourceImage, error)
}

// LocalFileDecoder reads a source file and flattens it to RGB8. WebP goes
// through the pure-Go x/image decoder; everything else through imaging,
// honouring EXIF orientation.
type LocalFileDecoder struct{}

func (LocalFileDecoder) Decode(_ context.Context, path string) (domain.SourceImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: read input file %s: %v", domain.ErrIO, path, err)
	}
	if info.IsDir() {
		return domain.SourceImage{}, fmt.Errorf("%w: input %s is a directory", domain.ErrIO, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: read input file %s: %v", domain.ErrIO, path, err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: decode source image %s: %v", domain.ErrConfiguration, path, err)
	}

	b := img.Bounds()
	return domain.NewSourceImage(rgbFromImage(img), b.Dx(), b.Dy())
}

func decodeImage(data []byte) (image.Image, error) {
	if isWebP(data) {
		return xwebp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// isWebP matches the RIFF container header: "RIFF" <size> "WEBP".
func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}
