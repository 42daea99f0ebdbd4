package gui

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
)

// previewImage converts buf for display, downscaling so that neither side
// exceeds maxDim. Images already within bounds are returned unscaled.
func previewImage(buf *imaging.Buffer, maxDim int) (image.Image, error) {
	img, err := buf.ToImage()
	if err != nil {
		return nil, err
	}
	return fitWithin(img, maxDim), nil
}

// fitWithin scales img down, keeping its aspect ratio, until the longest
// side is at most maxDim.
func fitWithin(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	var dw, dh int
	if w >= h {
		dw = maxDim
		dh = max(1, h*maxDim/w)
	} else {
		dh = maxDim
		dw = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// placeholder is shown before any image is loaded.
func placeholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderColor), image.Point{}, draw.Src)
	return img
}
