package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// TraceEntry is one provider round trip written to the trace file.
type TraceEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Driver      string          `json:"driver"`
	Endpoint    string          `json:"endpoint"`
	Model       string          `json:"model,omitempty"`
	RequestBody json.RawMessage `json:"request_body,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
}

// Tracer appends entries to a file as NDJSON.
type Tracer struct {
	mu   sync.Mutex
	file *os.File
}

var (
	activeTracer *Tracer
	activeMu     sync.Mutex
)

// EnableTracing starts tracing to path and returns a function that stops it.
func EnableTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	activeMu.Lock()
	previous := activeTracer
	activeTracer = &Tracer{file: f}
	activeMu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	return DisableTracing, nil
}

// DisableTracing stops tracing and closes the trace file.
func DisableTracing() {
	activeMu.Lock()
	t := activeTracer
	activeTracer = nil
	activeMu.Unlock()

	if t != nil {
		_ = t.Close()
	}
}

// Trace records entry when tracing is enabled.
func Trace(entry TraceEntry) {
	activeMu.Lock()
	t := activeTracer
	activeMu.Unlock()

	t.Write(entry)
}

// Write appends a single entry.
func (t *Tracer) Write(entry TraceEntry) {
	if t == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file != nil {
		_, _ = t.file.Write(data)
	}
}

// Close closes the trace file.
func (t *Tracer) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// traceBody keeps request/response bodies out of the trace when they are not JSON.
func traceBody(data []byte) json.RawMessage {
	if len(data) == 0 || !json.Valid(data) {
		return nil
	}
	return json.RawMessage(data)
}

// TraceCall records a completed provider call.
func TraceCall(driverName, endpoint, model string, start time.Time, reqBody, respBody []byte, status int, callErr error) {
	entry := TraceEntry{
		Driver:      driverName,
		Endpoint:    endpoint,
		Model:       model,
		RequestBody: traceBody(reqBody),
		StatusCode:  status,
		Response:    traceBody(respBody),
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	Trace(entry)
}
