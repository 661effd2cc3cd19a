package service

import (
	"context"
	"io"

	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/ds124wfegd/image-converter/internal/pkg/kafka"
	"github.com/ds124wfegd/image-converter/internal/pkg/processor"
	"github.com/ds124wfegd/image-converter/internal/pkg/registry"
)

type ConvertService interface {
	Convert(ctx context.Context, filename string, src io.Reader, outputFormat string) (*entity.ConversionResult, error)
	Formats() []entity.FormatResponse
	Supports(outputFormat string) bool
}

type requestIDKey struct{}

// WithRequestID attaches the request id that conversion events carry.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type convertService struct {
	formats       *registry.Registry
	processor     processor.ImageProcessor
	producer      kafka.Producer
	maxUploadSize int64
}

func NewConvertService(formats *registry.Registry, processor processor.ImageProcessor, producer kafka.Producer, maxUploadSize int64) ConvertService {
	return &convertService{
		formats:       formats,
		processor:     processor,
		producer:      producer,
		maxUploadSize: maxUploadSize,
	}
}
