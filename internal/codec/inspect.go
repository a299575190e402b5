package codec

import (
	"bytes"
	"fmt"
	"image"

	"edgevision/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type signature struct {
	format string
	magic  [][]byte
}

// Formats OpenCV reads that the Go image decoders do not.
var signatures = []signature{
	{"pbm", [][]byte{[]byte("P1"), []byte("P4")}},
	{"pgm", [][]byte{[]byte("P2"), []byte("P5")}},
	{"ppm", [][]byte{[]byte("P3"), []byte("P6")}},
	{"pfm", [][]byte{[]byte("Pf"), []byte("PF")}},
	{"jp2", [][]byte{{0x00, 0x00, 0x00, 0x0c, 'j', 'P', ' ', ' '}, {0xff, 0x4f, 0xff, 0x51}}},
	{"exr", [][]byte{{'v', '/', '1', 0x01}}},
	{"hdr", [][]byte{[]byte("#?RADIANCE"), []byte("#?RGBE")}},
	{"sunras", [][]byte{{0x59, 0xa6, 0x6a, 0x95}}},
}

func formatOf(data []byte) string {
	for _, sig := range signatures {
		for _, magic := range sig.magic {
			if bytes.HasPrefix(data, magic) {
				return sig.format
			}
		}
	}
	return "unknown"
}

// Inspect reports the format and size of any image the pipeline can decode.
// Headers the Go decoders understand are read without touching pixels; other
// inputs are decoded once through OpenCV.
func Inspect(data []byte, tracker safe.MemoryTracker) (Info, error) {
	if info, err := Sniff(data); err == nil {
		return info, nil
	}

	m, err := decode(data, gocv.IMReadUnchanged, tracker, "inspect")
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer m.Close()

	return Info{Format: formatOf(data), Width: m.Cols(), Height: m.Rows()}, nil
}

// Preview decodes data into an image.Image for display, falling back to
// OpenCV for formats the Go decoders lack.
func Preview(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	m, err := Decode(data, nil)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	mat := m.GetMat()
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
