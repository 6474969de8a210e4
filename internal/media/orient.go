package media

import (
	"image"
	"image/draw"
)

// Orient returns img transformed so that EXIF orientation o displays upright
func Orient(img image.Image, o int) image.Image {
	switch o {
	case 2:
		return flipHorizontal(img)
	case 3:
		return rotate180(img)
	case 4:
		return flipVertical(img)
	case 5:
		return flipHorizontal(rotate90(img))
	case 6:
		return rotate90(img)
	case 7:
		return flipHorizontal(rotate270(img))
	case 8:
		return rotate270(img)
	default:
		return img
	}
}

// transform copies src into a new RGBA image, placing source pixel (x, y) at to(x, y)
func transform(src image.Image, w, h int, to func(x, y int) (int, int)) *image.RGBA {
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dx, dy := to(x, y)
			dst.SetRGBA(dx, dy, rgba.RGBAAt(x, y))
		}
	}
	return dst
}

// rotate90 turns the image clockwise
func rotate90(src image.Image) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return transform(src, h, w, func(x, y int) (int, int) { return h - 1 - y, x })
}

func rotate180(src image.Image) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return transform(src, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
}

func rotate270(src image.Image) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return transform(src, h, w, func(x, y int) (int, int) { return y, w - 1 - x })
}

func flipHorizontal(src image.Image) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return transform(src, w, h, func(x, y int) (int, int) { return w - 1 - x, y })
}

func flipVertical(src image.Image) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return transform(src, w, h, func(x, y int) (int, int) { return x, h - 1 - y })
}
