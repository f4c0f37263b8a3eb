package pipeline

import (
	"image"
	"image/color"

	"github.com/chai2010/webp"
)

// packedRGB wraps a packed RGB8 buffer without copying, for the libwebp RGB
// entry points.
func packedRGB(pix []byte, width, height int) *webp.RGBImage {
	return &webp.RGBImage{
		XPix:    pix,
		XStride: width * 3,
		XRect:   image.Rect(0, 0, width, height),
	}
}

// rgbaFromRGB expands a packed RGB8 buffer into an opaque *image.RGBA.
func rgbaFromRGB(pix []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(pix); i, j = i+3, j+4 {
		img.Pix[j] = pix[i]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// rgbFromImage flattens any image to packed RGB8, discarding alpha.
func rgbFromImage(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*3)

	if src, ok := img.(*image.NRGBA); ok {
		copyFourChannel(out, src.Pix, src.Stride, w, h)
		return out
	}
	// Premultiplied RGBA equals straight RGBA only when fully opaque.
	if src, ok := img.(*image.RGBA); ok && src.Opaque() {
		copyFourChannel(out, src.Pix, src.Stride, w, h)
		return out
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out[i] = c.R
			out[i+1] = c.G
			out[i+2] = c.B
			i += 3
		}
	}
	return out
}

func copyFourChannel(dst, src []byte, stride, w, h int) {
	i := 0
	for y := 0; y < h; y++ {
		row := src[y*stride : y*stride+w*4]
		for x := 0; x < len(row); x += 4 {
			dst[i] = row[x]
			dst[i+1] = row[x+1]
			dst[i+2] = row[x+2]
			i += 3
		}
	}
}
