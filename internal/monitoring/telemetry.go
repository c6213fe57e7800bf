// Package monitoring - telemetry.go records request events to JSONL.
//
// DESIGN: One JSON object per line, appended immediately after each
// request so tailing the file gives a live view. Failures to write
// telemetry never affect request handling.
package monitoring

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/relaymesh/inference-gateway/internal/utils"
)

// Recorder appends request events to the configured JSONL file.
type Recorder struct {
	config TelemetryConfig
	mu     sync.Mutex
}

// NewRecorder creates the recorder and its log directory.
func NewRecorder(cfg TelemetryConfig) (*Recorder, error) {
	r := &Recorder{config: cfg}
	if !cfg.Enabled || cfg.LogPath == "" {
		return r, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0750); err != nil {
		return nil, err
	}
	return r, nil
}

// RecordRequest appends one event.
func (r *Recorder) RecordRequest(event *RequestEvent) {
	if !r.config.Enabled {
		return
	}

	if r.config.LogToStdout {
		log.Info().
			Str("request_id", event.RequestID).
			Str("provider", event.Provider).
			Int("status", event.StatusCode).
			Int64("latency_ms", event.TotalLatencyMs).
			Msg("request")
	}

	if r.config.LogPath == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := appendJSONL(r.config.LogPath, event); err != nil {
		log.Warn().Err(err).Msg("telemetry write failed")
	}
}

// appendJSONL appends one JSON object as a line to path.
func appendJSONL(path string, event any) error {
	data, err := utils.MarshalNoEscape(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Write(data)
	return err
}
