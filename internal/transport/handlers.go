package transport

import (
	"github.com/ds124wfegd/image-converter/internal/service"
)

type ConvertHandler struct {
	service       service.ConvertService
	maxUploadSize int64
}

func NewConvertHandler(service service.ConvertService, maxUploadSize int64) *ConvertHandler {
	return &ConvertHandler{service: service, maxUploadSize: maxUploadSize}
}
