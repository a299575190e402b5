package codec

import "errors"

var (
	// ErrDecode is returned when bytes are not a decodable raster image.
	ErrDecode = errors.New("image decode failed")

	// ErrEncode is returned when a raster cannot be serialized to PNG.
	ErrEncode = errors.New("image encode failed")

	// ErrUnsupportedFormat is returned by Sniff for unrecognized headers.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
