package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixelopt/internal/domain"
)

// encodeContainer re-saves an RGB8 buffer in the container named by the
// destination extension, without lossy re-encoding where the container allows it.
func encodeContainer(pix []byte, width, height int, destPath string) ([]byte, string, error) {
	if err := domain.CheckBufferShape(pix, width, height); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(destPath), "."))
	if ext == "webp" {
		data, err := webp.EncodeLosslessRGB(packedRGB(pix, width, height))
		if err != nil {
			return nil, "", fmt.Errorf("%w: save webp: %v", domain.ErrIO, err)
		}
		return data, "webp", nil
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, "", fmt.Errorf("%w: no container format for extension %q", domain.ErrPath, ext)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgbaFromRGB(pix, width, height), format); err != nil {
		return nil, "", fmt.Errorf("%w: save %s: %v", domain.ErrIO, format, err)
	}
	return buf.Bytes(), strings.ToLower(format.String()), nil
}
