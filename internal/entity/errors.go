package entity

import "errors"

var (
	// Upload errors
	ErrNoFile         = errors.New("no file provided")
	ErrUploadTooLarge = errors.New("upload exceeds size limit")

	// Decode errors
	ErrInvalidImage = errors.New("invalid image format or corrupted file")
	ErrDecode       = errors.New("error opening the image")

	// Encode errors
	ErrUnsupportedFormat = errors.New("output format not supported")
	ErrEncode            = errors.New("error converting")
)

// Kind returns a short machine readable name for err, used in logs and
// conversion events.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoFile):
		return "no_file"
	case errors.Is(err, ErrUploadTooLarge):
		return "upload_too_large"
	case errors.Is(err, ErrInvalidImage):
		return "invalid_image"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrEncode):
		return "encode_error"
	default:
		return "internal"
	}
}
