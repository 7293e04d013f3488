// Package telemetry records analysis traces to an optional observability
// backend. Every operation is fail-soft: backend trouble is logged to the
// operator channel and never surfaces to the caller.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LLMSpan describes one agent invocation inside a trace. Token counts are
// length-derived approximations, not tokenizer output.
type LLMSpan struct {
	Input           string
	Output          string
	Model           string
	NumInputTokens  int
	NumOutputTokens int
	TotalTokens     int
	Duration        time.Duration
}

// ApproxTokens estimates a token count from raw text length. The estimate
// is deliberately coarse; treat it as non-authoritative.
func ApproxTokens(text string) int { return len(text) / 4 }

// Recorder drives one session → trace → span → conclude lifecycle. A
// recorder is single-use and must not be shared between analyses, so spans
// from concurrent calls are never interleaved onto the same trace.
type Recorder interface {
	StartSession(ctx context.Context)
	StartTrace(ctx context.Context, name, input string)
	AddLLMSpan(ctx context.Context, span LLMSpan)
	Conclude(ctx context.Context, output string)
	Flush(ctx context.Context)
}

// Adapter holds the backend configuration shared by all recorders. When
// the backend endpoint or credential is absent the adapter is permanently
// unavailable and every recorder it hands out is a no-op.
type Adapter struct {
	endpoint  string
	apiKey    string
	project   string
	logStream string
	client    *http.Client
	available bool
}

// NewAdapter creates an adapter. A nil client falls back to
// http.DefaultClient.
func NewAdapter(endpoint, apiKey, project, logStream string, client *http.Client) *Adapter {
	a := &Adapter{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		project:   project,
		logStream: logStream,
		client:    client,
	}
	if a.client == nil {
		a.client = http.DefaultClient
	}
	a.available = a.endpoint != "" && a.apiKey != ""
	if a.available {
		slog.Info("telemetry enabled", "project", project, "log_stream", logStream)
	} else {
		slog.Info("telemetry backend not configured, tracing disabled")
	}
	return a
}

// Available reports whether the backend is configured at all.
func (a *Adapter) Available() bool { return a.available }

// NewRecorder returns a fresh single-use recorder for one analysis.
func (a *Adapter) NewRecorder() Recorder {
	if !a.available {
		return noopRecorder{}
	}
	return &recorder{adapter: a}
}

type recorder struct {
	adapter   *Adapter
	sessionID string
	traceID   string
	skipped   bool
}

func (r *recorder) StartSession(ctx context.Context) {
	if r.skipped {
		return
	}
	id := uuid.NewString()
	payload := map[string]any{
		"id":         id,
		"project":    r.adapter.project,
		"log_stream": r.adapter.logStream,
	}
	if err := r.adapter.post(ctx, "/api/v1/sessions", payload); err != nil {
		slog.Warn("telemetry session start failed", "error", err)
		r.skipped = true
		return
	}
	r.sessionID = id
	slog.Info("telemetry session started", "project", r.adapter.project, "session_id", id)
}

func (r *recorder) StartTrace(ctx context.Context, name, input string) {
	if r.skipped || r.sessionID == "" {
		return
	}
	id := uuid.NewString()
	payload := map[string]any{
		"id":         id,
		"session_id": r.sessionID,
		"name":       name,
		"input":      input,
		"started_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := r.adapter.post(ctx, "/api/v1/traces", payload); err != nil {
		slog.Warn("telemetry trace start failed", "error", err)
		r.skipped = true
		return
	}
	r.traceID = id
}

func (r *recorder) AddLLMSpan(ctx context.Context, span LLMSpan) {
	if r.skipped || r.traceID == "" {
		return
	}
	payload := map[string]any{
		"id":                uuid.NewString(),
		"type":              "llm",
		"input":             span.Input,
		"output":            span.Output,
		"model":             span.Model,
		"num_input_tokens":  span.NumInputTokens,
		"num_output_tokens": span.NumOutputTokens,
		"total_tokens":      span.TotalTokens,
		"duration_ns":       span.Duration.Nanoseconds(),
	}
	if err := r.adapter.post(ctx, "/api/v1/traces/"+r.traceID+"/spans", payload); err != nil {
		slog.Warn("telemetry span record failed", "error", err)
		r.skipped = true
	}
}

func (r *recorder) Conclude(ctx context.Context, output string) {
	if r.skipped || r.traceID == "" {
		return
	}
	payload := map[string]any{"output": output}
	if err := r.adapter.post(ctx, "/api/v1/traces/"+r.traceID+"/conclude", payload); err != nil {
		slog.Warn("telemetry trace conclude failed", "error", err)
		r.skipped = true
	}
}

func (r *recorder) Flush(ctx context.Context) {
	if r.skipped || r.sessionID == "" {
		return
	}
	payload := map[string]any{"session_id": r.sessionID}
	if err := r.adapter.post(ctx, "/api/v1/flush", payload); err != nil {
		slog.Warn("telemetry flush failed", "error", err)
		r.skipped = true
		return
	}
	slog.Info("telemetry trace flushed", "session_id", r.sessionID, "trace_id", r.traceID)
}

func (a *Adapter) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry backend: status=%d", resp.StatusCode)
	}
	return nil
}

// noopRecorder is handed out when the backend is unavailable.
type noopRecorder struct{}

func (noopRecorder) StartSession(context.Context)            {}
func (noopRecorder) StartTrace(context.Context, string, string) {}
func (noopRecorder) AddLLMSpan(context.Context, LLMSpan)     {}
func (noopRecorder) Conclude(context.Context, string)        {}
func (noopRecorder) Flush(context.Context)                   {}
