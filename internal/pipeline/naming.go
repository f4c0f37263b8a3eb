package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dunamismax/pixelopt/internal/domain"
)

// OutputDirName is the directory, next to the source file, receiving every variant.
const OutputDirName = "optimized"

// OutputPath names the file for one variant:
//
//	<source dir>/optimized/<stem>_<width>[_<quality>].<ext>
//
// ext is "webp" for the WebP encoder, otherwise the source extension.
func OutputPath(sourcePath string, width int, cc *domain.CompressionConfig) (string, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return "", fmt.Errorf("%w: source path is empty", domain.ErrPath)
	}

	base := filepath.Base(sourcePath)
	if base == string(filepath.Separator) || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %s has no parent directory or file name", domain.ErrPath, sourcePath)
	}
	dir := filepath.Dir(sourcePath)

	stem, ext := splitName(base)
	if stem == "" {
		return "", fmt.Errorf("%w: %s has no file stem", domain.ErrPath, sourcePath)
	}

	name := stem + "_" + strconv.Itoa(width)
	if cc != nil {
		name += "_" + cc.QualityLabel()
		if cc.Encoder == domain.EncoderWebP {
			ext = "webp"
		}
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", domain.ErrPath, sourcePath)
	}

	return filepath.Join(dir, OutputDirName, name+"."+ext), nil
}

// splitName separates a file name into stem and extension (without dot).
// A single leading dot belongs to the stem, so ".env" has no extension.
func splitName(base string) (string, string) {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return base, ""
	}
	return base[:i], base[i+1:]
}
