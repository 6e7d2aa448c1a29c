package splat

import (
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
)

// FocalLengthFromEXIF estimates the focal length in pixels from JPEG EXIF metadata.
//
// The 35mm equivalent focal length is scaled by the ratio of image and full-frame diagonals. Otherwise
// the physical focal length is scaled by PixelXDimension over a 24mm sensor width.
func FocalLengthFromEXIF(r io.Reader, width, height int) (float32, bool) {
	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return 0, false
	}

	if f35, ok := exifInt(x, exif.FocalLengthIn35mmFilm); ok && f35 > 0 {
		imageDiag := math.Sqrt(float64(width*width + height*height))
		filmDiag := math.Sqrt(filmWidthMM*filmWidthMM + filmHeightMM*filmHeightMM)
		return float32(f35) * float32(imageDiag/filmDiag), true
	}

	focal, ok := exifRational(x, exif.FocalLength)
	if !ok || focal <= 0 {
		return 0, false
	}
	pixelX, okX := exifInt(x, exif.PixelXDimension)
	_, okY := exifInt(x, exif.PixelYDimension)
	if !okX || !okY || pixelX <= 0 {
		return 0, false
	}
	return focal * float32(pixelX) / sensorWidthMM, true
}

// exifInt reads a SHORT or LONG tag.
func exifInt(x *exif.Exif, name exif.FieldName) (int, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

func exifRational(x *exif.Exif, name exif.FieldName) (float32, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float32(num) / float32(den), true
}
