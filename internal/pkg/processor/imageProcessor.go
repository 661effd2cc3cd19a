package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	ico "github.com/biessek/golang-ico"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/ds124wfegd/image-converter/internal/pkg/registry"
	"github.com/sirupsen/logrus"
	"github.com/spakin/netpbm"
)

// Largest edge an ICO entry can describe.
const maxIconSize = 256

type ImageProcessor interface {
	Decode(r io.Reader, name string) (image.Image, error)
	Encode(img image.Image, token string) (*bytes.Reader, entity.Format, error)
	CanEncode(token string) bool
}

type encodeFunc func(w io.Writer, img image.Image) error

type imageProcessor struct {
	formats  *registry.Registry
	encoders map[string]encodeFunc // keyed by codec
}

func NewImageProcessor(formats *registry.Registry, jpegQuality int) ImageProcessor {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = 75
	}

	return &imageProcessor{
		formats: formats,
		encoders: map[string]encodeFunc{
			registry.CodecJPEG: imagingEncoder(imaging.JPEG, imaging.JPEGQuality(jpegQuality)),
			registry.CodecPNG:  imagingEncoder(imaging.PNG),
			registry.CodecGIF:  imagingEncoder(imaging.GIF, imaging.GIFNumColors(256)),
			registry.CodecTIFF: imagingEncoder(imaging.TIFF),
			registry.CodecBMP:  imagingEncoder(imaging.BMP),
			registry.CodecPPM:  netpbmEncoder(netpbm.PPM, 255),
			registry.CodecPGM:  netpbmEncoder(netpbm.PGM, 255),
			registry.CodecPBM:  netpbmEncoder(netpbm.PBM, 1),
			registry.CodecICO:  encodeICO,
			registry.CodecWEBP: encodeWEBP,
		},
	}
}

// Decode reads a whole image. Input the codecs do not recognise at all is
// ErrInvalidImage; a recognised but broken stream is ErrDecode.
func (p *imageProcessor) Decode(r io.Reader, name string) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	entry := logrus.WithFields(logrus.Fields{
		"filename": name,
		"error":    err.Error(),
	})

	if errors.Is(err, image.ErrFormat) {
		entry.Error("Invalid image format")
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}

	entry.Error("Error opening the image")
	return nil, fmt.Errorf("%w: %v", entity.ErrDecode, err)
}

// Encode writes img in the format named by token. The registry is consulted
// before any encoder runs.
func (p *imageProcessor) Encode(img image.Image, token string) (*bytes.Reader, entity.Format, error) {
	format, ok := p.formats.Lookup(token)
	if !ok {
		logrus.WithField("format", token).Error("Output format not supported")
		return nil, entity.Format{}, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, token)
	}

	encode, ok := p.encoders[format.Codec]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"format": format.Token,
			"codec":  format.Codec,
		}).Error("No encoder available for codec")
		return nil, format, fmt.Errorf("%w: no %s encoder available", entity.ErrEncode, format.Codec)
	}

	var buf bytes.Buffer
	if err := safeEncode(encode, &buf, img); err != nil {
		logrus.WithFields(logrus.Fields{
			"format": format.Token,
			"error":  err.Error(),
		}).Errorf("Error converting to %s", format.Token)
		return nil, format, fmt.Errorf("%w to %s: %v", entity.ErrEncode, format.Token, err)
	}

	return bytes.NewReader(buf.Bytes()), format, nil
}

func (p *imageProcessor) CanEncode(token string) bool {
	format, ok := p.formats.Lookup(token)
	if !ok {
		return false
	}
	_, ok = p.encoders[format.Codec]
	return ok
}

// safeEncode turns an encoder panic into an error; some codecs panic on
// image types they were not written for.
func safeEncode(encode encodeFunc, w io.Writer, img image.Image) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encoder panic: %v", r)
		}
	}()
	return encode(w, img)
}

func imagingEncoder(format imaging.Format, opts ...imaging.EncodeOption) encodeFunc {
	return func(w io.Writer, img image.Image) error {
		return imaging.Encode(w, img, format, opts...)
	}
}

func netpbmEncoder(format netpbm.Format, maxValue uint16) encodeFunc {
	return func(w io.Writer, img image.Image) error {
		return netpbm.Encode(w, img, &netpbm.EncodeOptions{
			Format:   format,
			MaxValue: maxValue,
		})
	}
}

func encodeICO(w io.Writer, img image.Image) error {
	return ico.Encode(w, fitIcon(img))
}

func encodeWEBP(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: true})
}

// fitIcon scales img down so neither edge exceeds maxIconSize.
func fitIcon(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxIconSize && b.Dy() <= maxIconSize {
		return img
	}
	return imaging.Fit(img, maxIconSize, maxIconSize, imaging.Lanczos)
}
