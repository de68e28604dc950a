package model

// Record is one structured log event, exactly as it appears on the wire and
// inside buffer files. A Record is immutable once constructed; the delivery
// attempt counter lives on the Envelope that carries it through the pipeline.
type Record struct {
	Level             string         `json:"level"`
	Service           string         `json:"service"`
	LoggerName        string         `json:"logger_name"`
	Message           string         `json:"message"`
	UserID            string         `json:"user_id,omitempty"`
	TenantID          string         `json:"tenant_id,omitempty"`
	RequestID         string         `json:"request_id"`
	Context           map[string]any `json:"context"`
	ClientLogDatetime string         `json:"client_log_datetime"`
}

// Envelope pairs a Record with the number of exhausted delivery cycles.
// The counter is serialized as retry_count so buffered records keep their
// history across restarts. RequestID is never regenerated on re-buffering,
// which lets the server deduplicate under at-least-once delivery.
type Envelope struct {
	Record
	Attempts int `json:"retry_count"`
}
