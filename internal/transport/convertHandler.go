package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/ds124wfegd/image-converter/internal/service"
	"github.com/ds124wfegd/image-converter/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// room for multipart boundaries and the other form fields
const multipartOverhead = 1 << 20

func (h *ConvertHandler) ConvertImage(c *gin.Context) {
	outputFormat := c.Query("output_format")
	if outputFormat == "" {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "output_format query parameter is required"})
		return
	}
	// reject unknown tokens before the multipart body is parsed
	if !h.service.Supports(outputFormat) {
		h.writeError(c, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, outputFormat), "", outputFormat)
		return
	}

	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, entity.ErrUploadTooLarge, "", outputFormat)
			return
		}
		h.writeError(c, entity.ErrNoFile, "", outputFormat)
		return
	}

	src, err := file.Open()
	if err != nil {
		h.writeError(c, err, file.Filename, outputFormat)
		return
	}
	defer src.Close()

	ctx := service.WithRequestID(c.Request.Context(), middleware.RequestIDFrom(c))
	result, err := h.service.Convert(ctx, file.Filename, src, outputFormat)
	if err != nil {
		h.writeError(c, err, file.Filename, outputFormat)
		return
	}

	c.DataFromReader(http.StatusOK, result.Body.Size(), result.Format.MIMEType, result.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + result.Filename + `"`,
	})
}

func (h *ConvertHandler) GetFormats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Formats())
}

func (h *ConvertHandler) writeError(c *gin.Context, err error, filename, outputFormat string) {
	status := statusFor(err)

	entry := logrus.WithFields(logrus.Fields{
		"request_id": middleware.RequestIDFrom(c),
		"filename":   filename,
		"format":     outputFormat,
		"status":     status,
		"error":      err.Error(),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Unexpected error during conversion")
	} else {
		entry.Warn("Conversion rejected")
	}

	c.JSON(status, entity.ErrorResponse{Error: err.Error()})
}

// statusFor maps error kinds to HTTP statuses: client input problems are
// 400, everything else is 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNoFile),
		errors.Is(err, entity.ErrUploadTooLarge),
		errors.Is(err, entity.ErrInvalidImage),
		errors.Is(err, entity.ErrDecode),
		errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
