// Package monitoring - types.go defines telemetry event shapes.
package monitoring

import "time"

// RequestEvent captures one request through the gateway.
type RequestEvent struct {
	RequestID        string    `json:"request_id"`
	Timestamp        time.Time `json:"timestamp"`
	Method           string    `json:"method"`
	Path             string    `json:"path"`
	ClientIP         string    `json:"client_ip"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model,omitempty"`
	TargetHost       string    `json:"target_host,omitempty"`
	StatusCode       int       `json:"status_code"`
	RequestBodySize  int64     `json:"request_body_size"`
	ResponseBodySize int64     `json:"response_body_size"`
	Streaming        bool      `json:"streaming"`
	Observed         bool      `json:"observed"`
	Success          bool      `json:"success"`
	Error            string    `json:"error,omitempty"`
	TotalLatencyMs   int64     `json:"total_latency_ms"`
	// Usage from the observed response; zero when unobserved.
	InputTokens  int64 `json:"input_tokens,omitempty"`
	OutputTokens int64 `json:"output_tokens,omitempty"`
	TotalTokens  int64 `json:"total_tokens,omitempty"`
	// Estimated request tokens, for requests whose response carried no
	// usage object.
	EstimatedRequestTokens int `json:"estimated_request_tokens,omitempty"`
}

// TelemetryConfig controls the JSONL request log.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	LogPath     string `yaml:"log_path"`
	LogToStdout bool   `yaml:"log_to_stdout"`
}
