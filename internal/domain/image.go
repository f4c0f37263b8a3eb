package domain

import "fmt"

// BytesPerPixel is the channel count of every raw buffer handled here (RGB8).
const BytesPerPixel = 3

// SourceImage is a decoded, row-major RGB8 pixel buffer. It is never
// modified after construction; every transform allocates a new buffer.
type SourceImage struct {
	Pix    []byte
	Width  int
	Height int
}

func NewSourceImage(pix []byte, width, height int) (SourceImage, error) {
	if width <= 0 || height <= 0 {
		return SourceImage{}, fmt.Errorf("%w: source image has invalid dimensions %dx%d", ErrConfiguration, width, height)
	}
	if err := CheckBufferShape(pix, width, height); err != nil {
		return SourceImage{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return SourceImage{Pix: pix, Width: width, Height: height}, nil
}

// CheckBufferShape reports whether pix holds exactly width*height RGB pixels.
func CheckBufferShape(pix []byte, width, height int) error {
	want := width * height * BytesPerPixel
	if width <= 0 || height <= 0 || len(pix) != want {
		return fmt.Errorf("buffer of %d bytes does not match %dx%d rgb (%d bytes)", len(pix), width, height, want)
	}
	return nil
}
