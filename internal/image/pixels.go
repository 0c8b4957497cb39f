package image

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA returns img as non-premultiplied RGBA with its origin at (0, 0)
// and a stride of exactly 4*width. An image already in that form is returned
// as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// HasTransparency reports whether any pixel has alpha below 255.
func HasTransparency(img *image.NRGBA) bool {
	for y := range img.Rect.Dy() {
		row := img.Pix[y*img.Stride : y*img.Stride+4*img.Rect.Dx()]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xFF {
				return true
			}
		}
	}
	return false
}

// Scale resizes img to w x h with bilinear filtering.
func Scale(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return dst
}

// Unpad copies rows of stride bytes into a tightly packed buffer of
// rowBytes per row. It is used for GPU read-backs whose rows are aligned.
func Unpad(dst, src []byte, rows, rowBytes, stride int) {
	if stride == rowBytes {
		copy(dst, src[:rows*rowBytes])
		return
	}
	for y := range rows {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*stride:y*stride+rowBytes])
	}
}
