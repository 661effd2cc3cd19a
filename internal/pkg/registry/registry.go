package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ds124wfegd/image-converter/internal/entity"
)

// Codec identifiers.
const (
	CodecBMP      = "BMP"
	CodecDDS      = "DDS"
	CodecEPS      = "EPS"
	CodecGIF      = "GIF"
	CodecICO      = "ICO"
	CodecJPEG     = "JPEG"
	CodecJPEG2000 = "JPEG2000"
	CodecPNG      = "PNG"
	CodecPPM      = "PPM"
	CodecPGM      = "PGM"
	CodecPBM      = "PBM"
	CodecPCX      = "PCX"
	CodecPSD      = "PSD"
	CodecTIFF     = "TIFF"
	CodecTGA      = "TGA"
	CodecXBM      = "XBM"
	CodecXPM      = "XPM"
	CodecWEBP     = "WEBP"
)

var builtin = []entity.Format{
	{Token: "bmp", Codec: CodecBMP, MIMEType: "image/bmp"},
	{Token: "dds", Codec: CodecDDS, MIMEType: "image/vnd.ms-dds"},
	{Token: "eps", Codec: CodecEPS, MIMEType: "application/postscript"},
	{Token: "gif", Codec: CodecGIF, MIMEType: "image/gif"},
	{Token: "ico", Codec: CodecICO, MIMEType: "image/vnd.microsoft.icon"},
	{Token: "jpg", Codec: CodecJPEG, MIMEType: "image/jpeg"},
	{Token: "jpeg", Codec: CodecJPEG, MIMEType: "image/jpeg"},
	{Token: "jp2", Codec: CodecJPEG2000, MIMEType: "image/jp2"},
	{Token: "jpc", Codec: CodecJPEG2000, MIMEType: "image/jp2"},
	{Token: "png", Codec: CodecPNG, MIMEType: "image/png"},
	{Token: "ppm", Codec: CodecPPM, MIMEType: "image/x-portable-pixmap"},
	{Token: "pgm", Codec: CodecPGM, MIMEType: "image/x-portable-graymap"},
	{Token: "pbm", Codec: CodecPBM, MIMEType: "image/x-portable-bitmap"},
	{Token: "pcx", Codec: CodecPCX, MIMEType: "image/x-pcx"},
	{Token: "psd", Codec: CodecPSD, MIMEType: "image/vnd.adobe.photoshop"},
	{Token: "tiff", Codec: CodecTIFF, MIMEType: "image/tiff"},
	{Token: "tga", Codec: CodecTGA, MIMEType: "image/x-tga"},
	{Token: "xbm", Codec: CodecXBM, MIMEType: "image/x-xbitmap"},
	{Token: "xpm", Codec: CodecXPM, MIMEType: "image/x-xpixmap"},
	{Token: "webp", Codec: CodecWEBP, MIMEType: "image/webp"},
}

// Registry is an immutable token -> format table. It is safe for
// concurrent use because nothing writes to it after New returns.
type Registry struct {
	formats map[string]entity.Format
	tokens  []string
}

// New builds a registry and rejects empty fields and duplicate tokens.
func New(formats ...entity.Format) (*Registry, error) {
	r := &Registry{formats: make(map[string]entity.Format, len(formats))}

	for _, f := range formats {
		token := normalize(f.Token)
		if token == "" || f.Codec == "" || f.MIMEType == "" {
			return nil, fmt.Errorf("registry: incomplete format %+v", f)
		}
		if _, ok := r.formats[token]; ok {
			return nil, fmt.Errorf("registry: duplicate token %q", token)
		}
		f.Token = token
		r.formats[token] = f
		r.tokens = append(r.tokens, token)
	}
	sort.Strings(r.tokens)

	return r, nil
}

// Default returns the registry of every format the service advertises.
func Default() *Registry {
	r, err := New(builtin...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup is case-insensitive on token.
func (r *Registry) Lookup(token string) (entity.Format, bool) {
	f, ok := r.formats[normalize(token)]
	return f, ok
}

func (r *Registry) Tokens() []string {
	out := make([]string, len(r.tokens))
	copy(out, r.tokens)
	return out
}

func (r *Registry) Formats() []entity.Format {
	out := make([]entity.Format, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, r.formats[t])
	}
	return out
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
