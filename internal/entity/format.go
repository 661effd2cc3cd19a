package entity

// Format describes one output format the service can be asked for.
type Format struct {
	Token    string `json:"token"`
	Codec    string `json:"codec"`
	MIMEType string `json:"mime_type"`
}

type FormatResponse struct {
	Format
	Encodable bool `json:"encodable"`
}
