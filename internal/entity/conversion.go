package entity

import (
	"bytes"
	"time"
)

type ConversionResult struct {
	Format     Format
	Filename   string // download name, <stem>.<token>
	SourceMIME string
	Width      int
	Height     int
	Body       *bytes.Reader
}

// ConversionEvent is published once per conversion attempt.
type ConversionEvent struct {
	RequestID    string    `json:"request_id,omitempty"`
	Filename     string    `json:"filename"`
	SourceMIME   string    `json:"source_mime,omitempty"`
	OutputFormat string    `json:"output_format"`
	Outcome      string    `json:"outcome"`
	Error        string    `json:"error,omitempty"`
	Bytes        int       `json:"bytes"`
	DurationMs   float64   `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
