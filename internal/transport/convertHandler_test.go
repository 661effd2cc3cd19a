package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/image-converter/config"
	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/ds124wfegd/image-converter/internal/pkg/kafka"
	"github.com/ds124wfegd/image-converter/internal/pkg/processor"
	"github.com/ds124wfegd/image-converter/internal/pkg/registry"
	"github.com/ds124wfegd/image-converter/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrigins = []string{"http://morfeu.like"}

func newTestRouter(maxUploadSize int64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	formats := registry.Default()
	svc := service.NewConvertService(
		formats,
		processor.NewImageProcessor(formats, 90),
		kafka.NewProducer(config.KafkaConfig{}),
		maxUploadSize,
	)
	return InitRoutes(NewConvertHandler(svc, maxUploadSize), testOrigins)
}

func samplePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds a POST /convert_image/ request; an empty field
// name leaves the file out.
func multipartRequest(t *testing.T, field, filename string, data []byte, outputFormat string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("comment", "no file here"))
	}
	require.NoError(t, writer.Close())

	target := "/convert_image/"
	if outputFormat != "" {
		target += "?output_format=" + outputFormat
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	router := newTestRouter(1 << 20)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
	}
}

func TestConvertImageSuccess(t *testing.T) {
	tests := []struct {
		name            string
		filename        string
		outputFormat    string
		wantContentType string
		wantDisposition string
		decodable       bool
	}{
		{
			name:            "png to jpg",
			filename:        "photo.png",
			outputFormat:    "jpg",
			wantContentType: "image/jpeg",
			wantDisposition: `attachment; filename="photo.jpg"`,
			decodable:       true,
		},
		{
			name:            "uppercase token",
			filename:        "photo.png",
			outputFormat:    "TIFF",
			wantContentType: "image/tiff",
			wantDisposition: `attachment; filename="photo.tiff"`,
			decodable:       true,
		},
		{
			name:            "sanitized filename",
			filename:        "café?.png",
			outputFormat:    "png",
			wantContentType: "image/png",
			wantDisposition: `attachment; filename="caf_.png"`,
			decodable:       true,
		},
		{
			name:            "webp output",
			filename:        "photo.png",
			outputFormat:    "webp",
			wantContentType: "image/webp",
			wantDisposition: `attachment; filename="photo.webp"`,
			decodable:       true,
		},
		{
			name:            "filename with space",
			filename:        "scan 01.bmp",
			outputFormat:    "png",
			wantContentType: "image/png",
			wantDisposition: `attachment; filename="scan 01.png"`,
			decodable:       true,
		},
		{
			name:            "netpbm output",
			filename:        "scan.png",
			outputFormat:    "ppm",
			wantContentType: "image/x-portable-pixmap",
			wantDisposition: `attachment; filename="scan.ppm"`,
		},
	}

	router := newTestRouter(1 << 20)
	sample := samplePNG(t, 32, 24)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "file", tt.filename, sample, tt.outputFormat))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.wantContentType, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantDisposition, w.Header().Get("Content-Disposition"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			require.NotZero(t, w.Body.Len())

			if tt.decodable {
				img, err := imaging.Decode(bytes.NewReader(w.Body.Bytes()))
				require.NoError(t, err)
				assert.Equal(t, 32, img.Bounds().Dx())
				assert.Equal(t, 24, img.Bounds().Dy())
			}
		})
	}
}

func TestConvertImageErrors(t *testing.T) {
	sample := samplePNG(t, 8, 8)

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantError  error
	}{
		{
			name: "unregistered output format",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "a.png", sample, "zzz")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  entity.ErrUnsupportedFormat,
		},
		{
			name: "missing output format",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "a.png", sample, "")
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", "", nil, "png")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  entity.ErrNoFile,
		},
		{
			name: "file under the wrong field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "image", "a.png", sample, "png")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  entity.ErrNoFile,
		},
		{
			name: "not an image",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "notes.txt", []byte("plain text, not pixels"), "png")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  entity.ErrInvalidImage,
		},
		{
			name: "truncated image",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "cut.png", sample[:40], "png")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  entity.ErrDecode,
		},
		{
			name: "format without encoder",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "a.png", sample, "psd")
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  entity.ErrEncode,
		},
	}

	router := newTestRouter(1 << 20)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.req(t))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, w.Header().Get("Content-Disposition"))

			var resp entity.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.wantError != nil {
				assert.Contains(t, resp.Error, tt.wantError.Error())
			}
		})
	}
}

func TestConvertImageTooLarge(t *testing.T) {
	sample := samplePNG(t, 64, 64)
	router := newTestRouter(int64(len(sample) / 2))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "file", "big.png", sample, "png"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), entity.ErrUploadTooLarge.Error())
}

func TestConvertImageBodyOverLimit(t *testing.T) {
	router := newTestRouter(1024)
	huge := bytes.Repeat([]byte{0xab}, 3<<20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "file", "huge.png", huge, "png"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), entity.ErrUploadTooLarge.Error())
}

// An unknown token is rejected before the body is read, so even an
// oversized upload reports the format problem.
func TestConvertImageChecksFormatBeforeBody(t *testing.T) {
	router := newTestRouter(1024)
	huge := bytes.Repeat([]byte{0xab}, 3<<20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "file", "huge.png", huge, "zzz"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), entity.ErrUnsupportedFormat.Error())
	assert.NotContains(t, w.Body.String(), entity.ErrUploadTooLarge.Error())
}

func TestGetFormats(t *testing.T) {
	router := newTestRouter(1 << 20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/formats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var formats []entity.FormatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &formats))
	require.Len(t, formats, 20)

	byToken := map[string]entity.FormatResponse{}
	for _, f := range formats {
		byToken[f.Token] = f
	}
	assert.Equal(t, "image/webp", byToken["webp"].MIMEType)
	assert.True(t, byToken["png"].Encodable)
	assert.False(t, byToken["eps"].Encodable)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: entity.ErrInvalidImage, want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: bad", entity.ErrDecode), want: http.StatusBadRequest},
		{err: entity.ErrUnsupportedFormat, want: http.StatusBadRequest},
		{err: entity.ErrUploadTooLarge, want: http.StatusBadRequest},
		{err: entity.ErrNoFile, want: http.StatusBadRequest},
		{err: entity.ErrEncode, want: http.StatusInternalServerError},
		{err: errors.New("unexpected"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
