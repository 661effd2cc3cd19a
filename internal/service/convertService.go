package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/ds124wfegd/image-converter/internal/pkg/filename"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

func (s *convertService) Convert(ctx context.Context, name string, src io.Reader, outputFormat string) (*entity.ConversionResult, error) {
	start := time.Now()
	safeName := filename.Sanitize(name)

	result, err := s.convert(safeName, src, outputFormat)

	event := entity.ConversionEvent{
		RequestID:    requestID(ctx),
		Filename:     safeName,
		OutputFormat: outputFormat,
		Outcome:      entity.Kind(err),
		DurationMs:   float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:    start.UTC(),
	}
	if err != nil {
		event.Error = err.Error()
	} else {
		event.SourceMIME = result.SourceMIME
		event.Bytes = int(result.Body.Size())
	}
	if perr := s.producer.SendMessage(ctx, event); perr != nil {
		logrus.WithField("request_id", event.RequestID).Warnf("Failed to publish conversion event: %v", perr)
	}

	return result, err
}

func (s *convertService) convert(safeName string, src io.Reader, outputFormat string) (*entity.ConversionResult, error) {
	format, ok := s.formats.Lookup(outputFormat)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"filename": safeName,
			"format":   outputFormat,
		}).Error("Output format not supported")
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, outputFormat)
	}

	data, err := s.readUpload(src)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"filename": safeName,
			"error":    err.Error(),
		}).Error("Failed to read upload")
		return nil, err
	}

	sourceMIME := mimetype.Detect(data).String()

	img, err := s.processor.Decode(bytes.NewReader(data), safeName)
	if err != nil {
		return nil, err
	}

	body, format, err := s.processor.Encode(img, format.Token)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"filename":    safeName,
		"source_mime": sourceMIME,
		"format":      format.Token,
		"mime":        format.MIMEType,
	}).Info("File converted")

	bounds := img.Bounds()
	return &entity.ConversionResult{
		Format:     format,
		Filename:   filename.Download(safeName, format.Token),
		SourceMIME: sourceMIME,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Body:       body,
	}, nil
}

// readUpload buffers the whole upload, refusing anything over maxUploadSize.
func (s *convertService) readUpload(src io.Reader) ([]byte, error) {
	reader := src
	if s.maxUploadSize > 0 {
		reader = io.LimitReader(src, s.maxUploadSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}
	if s.maxUploadSize > 0 && int64(len(data)) > s.maxUploadSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", entity.ErrUploadTooLarge, s.maxUploadSize)
	}
	return data, nil
}

func (s *convertService) Formats() []entity.FormatResponse {
	formats := s.formats.Formats()
	out := make([]entity.FormatResponse, 0, len(formats))
	for _, f := range formats {
		out = append(out, entity.FormatResponse{
			Format:    f,
			Encodable: s.processor.CanEncode(f.Token),
		})
	}
	return out
}

// Supports reports whether outputFormat is a registered token.
func (s *convertService) Supports(outputFormat string) bool {
	_, ok := s.formats.Lookup(outputFormat)
	return ok
}
