package media

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) tiffEntry {
	b := append([]byte(s), 0)
	return tiffEntry{tag, 2, uint32(len(b)), b}
}

func shortEntry(tag uint16, v uint16) tiffEntry {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return tiffEntry{tag, 3, 1, b}
}

func longEntry(tag uint16, v uint32) tiffEntry {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return tiffEntry{tag, 4, 1, b}
}

func rationalEntry(tag uint16, num, den uint32) tiffEntry {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[:4], num)
	binary.BigEndian.PutUint32(b[4:], den)
	return tiffEntry{tag, 5, 1, b}
}

func ifdSize(entries []tiffEntry) int {
	n := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.data) > 4 {
			n += len(e.data) + len(e.data)%2
		}
	}
	return n
}

// encodeIFD lays out a big-endian IFD that starts at offset start of the TIFF stream
func encodeIFD(start int, entries []tiffEntry) []byte {
	var head, data bytes.Buffer
	dataOff := start + 2 + 12*len(entries) + 4

	binary.Write(&head, binary.BigEndian, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&head, binary.BigEndian, e.tag)
		binary.Write(&head, binary.BigEndian, e.typ)
		binary.Write(&head, binary.BigEndian, e.count)
		if len(e.data) <= 4 {
			value := make([]byte, 4)
			copy(value, e.data)
			head.Write(value)
			continue
		}
		binary.Write(&head, binary.BigEndian, uint32(dataOff+data.Len()))
		data.Write(e.data)
		if len(e.data)%2 == 1 {
			data.WriteByte(0)
		}
	}
	binary.Write(&head, binary.BigEndian, uint32(0))
	return append(head.Bytes(), data.Bytes()...)
}

// buildTIFF returns an EXIF TIFF stream with IFD0 and, when given, an EXIF sub-IFD
func buildTIFF(ifd0, exifIFD []tiffEntry) []byte {
	out := []byte{'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08}
	if len(exifIFD) == 0 {
		return append(out, encodeIFD(8, ifd0)...)
	}

	ifd0 = append(ifd0, longEntry(0x8769, 0))
	exifStart := 8 + ifdSize(ifd0)
	ifd0[len(ifd0)-1] = longEntry(0x8769, uint32(exifStart))

	out = append(out, encodeIFD(8, ifd0)...)
	return append(out, encodeIFD(exifStart, exifIFD)...)
}

// withExif inserts an APP1 EXIF segment right after the JPEG SOI marker
func withExif(jpg, tiff []byte) []byte {
	seg := append([]byte("Exif\x00\x00"), tiff...)
	length := len(seg) + 2
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1, byte(length >> 8), byte(length)}
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func cameraJPEG(t *testing.T, w, h int, orientation uint16) []byte {
	t.Helper()
	tiff := buildTIFF(
		[]tiffEntry{
			asciiEntry(0x010F, "FUJIFILM"),
			asciiEntry(0x0110, "X100V"),
			shortEntry(0x0112, orientation),
		},
		[]tiffEntry{
			rationalEntry(0x829A, 10, 2500),
			rationalEntry(0x829D, 28, 10),
			shortEntry(0x8827, 400),
			asciiEntry(0x9003, "2024:06:01 18:30:00"),
			rationalEntry(0x920A, 23, 1),
		},
	)
	return withExif(encodeJPEG(t, w, h), tiff)
}

func TestExtractExif(t *testing.T) {
	data := cameraJPEG(t, 16, 8, 1)

	got := ExtractExif(data)
	assert.Equal(t, models.ExifData{
		Make:             "FUJIFILM",
		Model:            "X100V",
		DateTimeOriginal: "2024:06:01 18:30:00",
		FocalLength:      23,
		FNumber:          2.8,
		ISO:              400,
		ExposureTime:     "1/250",
	}, got)
}

func TestExtractExif_NoExif(t *testing.T) {
	assert.True(t, ExtractExif(encodeJPEG(t, 4, 4)).Empty())
	assert.True(t, ExtractExif([]byte("not an image")).Empty())

	s, err := ExifJSON(encodeJPEG(t, 4, 4))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestExifJSON(t *testing.T) {
	s, err := ExifJSON(cameraJPEG(t, 16, 8, 1))
	require.NoError(t, err)
	require.NotNil(t, s)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(*s), &decoded))
	assert.Equal(t, "FUJIFILM", decoded["Make"])
	assert.EqualValues(t, 400, decoded["ISO"])
	assert.Equal(t, "1/250", decoded["ExposureTime"])
}

func TestOrientation(t *testing.T) {
	assert.Equal(t, 6, Orientation(cameraJPEG(t, 8, 4, 6)))
	assert.Equal(t, 1, Orientation(cameraJPEG(t, 8, 4, 9)))
	assert.Equal(t, 1, Orientation(encodeJPEG(t, 8, 4)))
}

func TestOrient(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, red)
	src.SetRGBA(1, 0, blue)

	tests := []struct {
		orientation int
		w, h        int
		first       color.RGBA
	}{
		{1, 2, 1, red},
		{2, 2, 1, blue},
		{3, 2, 1, blue},
		{4, 2, 1, red},
		{5, 1, 2, red},
		{6, 1, 2, red},
		{7, 1, 2, blue},
		{8, 1, 2, blue},
	}

	for _, tt := range tests {
		out := Orient(src, tt.orientation)
		b := out.Bounds()
		assert.Equal(t, tt.w, b.Dx(), "orientation %d", tt.orientation)
		assert.Equal(t, tt.h, b.Dy(), "orientation %d", tt.orientation)
		assert.Equal(t, tt.first, color.RGBAModel.Convert(out.At(b.Min.X, b.Min.Y)), "orientation %d", tt.orientation)
	}
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestThumbnail(t *testing.T) {
	thumb, err := Thumbnail(encodeJPEG(t, 1600, 800), ThumbnailOptions{})
	require.NoError(t, err)
	w, h := decodeSize(t, thumb)
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
}

func TestThumbnail_AppliesOrientation(t *testing.T) {
	thumb, err := Thumbnail(cameraJPEG(t, 1600, 800, 6), ThumbnailOptions{})
	require.NoError(t, err)
	w, h := decodeSize(t, thumb)
	assert.Equal(t, 400, w)
	assert.Equal(t, 800, h)
}

func TestThumbnail_SmallImageKeepsSize(t *testing.T) {
	thumb, err := Thumbnail(encodeJPEG(t, 120, 90), ThumbnailOptions{MaxEdge: 200, Quality: 70})
	require.NoError(t, err)
	w, h := decodeSize(t, thumb)
	assert.Equal(t, 120, w)
	assert.Equal(t, 90, h)
}

func TestThumbnail_InvalidImage(t *testing.T) {
	_, err := Thumbnail([]byte("definitely not a jpeg"), ThumbnailOptions{})
	assert.Error(t, err)
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"summer_trip-01.jpg":   "Summer Trip 01",
		"/photos/IMG_2044.JPG": "IMG 2044",
		"beach.day.png":        "Beach.day",
		"already Titled.jpeg":  "Already Titled",
		"__double--sep__.jpg":  "Double Sep",
		"élan vital.heic":      "Élan Vital",
		"noext":                "Noext",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleFromFilename(in), in)
	}
}
