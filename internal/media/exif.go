package media

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/blackpiratelive/gallery-app/internal/models"

	"github.com/rwcarlsen/goexif/exif"
)

// ExtractExif reads the camera settings from an image. Images without EXIF yield an empty record.
func ExtractExif(data []byte) models.ExifData {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return models.ExifData{}
	}

	out := models.ExifData{
		Make:             stringField(x, exif.Make),
		Model:            stringField(x, exif.Model),
		DateTimeOriginal: stringField(x, exif.DateTimeOriginal),
		FocalLength:      floatField(x, exif.FocalLength),
		FNumber:          floatField(x, exif.FNumber),
		ExposureTime:     ratioField(x, exif.ExposureTime),
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			out.ISO = iso
		}
	}
	return out
}

// ExifJSON serializes the EXIF of an image for the exif_data column, or nil when there is none
func ExifJSON(data []byte) (*string, error) {
	e := ExtractExif(data)
	if e.Empty() {
		return nil, nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// Orientation returns the EXIF orientation of an image, 1 when absent or invalid
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

func stringField(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func floatField(x *exif.Exif, name exif.FieldName) float64 {
	tag, err := x.Get(name)
	if err != nil {
		return 0
	}
	r, err := tag.Rat(0)
	if err != nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

// ratioField keeps exposure times readable, "1/250" rather than 0.004
func ratioField(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	r, err := tag.Rat(0)
	if err != nil {
		return ""
	}
	return r.RatString()
}
