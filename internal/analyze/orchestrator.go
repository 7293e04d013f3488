package analyze

import (
	"context"
	"strings"
	"time"

	"github.com/jyothiv-codes/HackSprint/internal/agent"
	"github.com/jyothiv-codes/HackSprint/internal/scan"
	"github.com/jyothiv-codes/HackSprint/internal/telemetry"
)

// FailureMarker is substituted when the agent completes without producing
// any usable text. That case is a degraded success, not an error.
const FailureMarker = "Analysis failed"

const traceName = "Browser Tab Analysis"

// TraceFactory hands out one single-use trace recorder per analysis.
type TraceFactory interface {
	NewRecorder() telemetry.Recorder
}

// Orchestrator composes the task prompt, drives the agent to completion,
// and wraps the call with fail-soft telemetry.
type Orchestrator struct {
	provider agent.Provider
	traces   TraceFactory
}

// NewOrchestrator creates an orchestrator. provider may be nil when no
// agent credential is configured; analysis calls then fail with
// AGENT_UNAVAILABLE without any I/O.
func NewOrchestrator(provider agent.Provider, traces TraceFactory) *Orchestrator {
	return &Orchestrator{provider: provider, traces: traces}
}

// Analyze runs one analysis over the given inventory. Precondition
// violations are rejected before any I/O. A hard agent failure propagates
// to the caller and skips the trace conclude; backend telemetry trouble
// never does.
func (o *Orchestrator) Analyze(ctx context.Context, records []scan.TabRecord, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", newError(CodeValidation, "task instruction is required", nil)
	}
	if len(records) == 0 {
		return "", newError(CodeValidation, "no tabs to analyze; run a scan first", nil)
	}
	if o.provider == nil {
		return "", newError(CodeAgentUnavailable, "agent credential not configured", nil)
	}

	task := BuildTask(records, instruction)

	rec := o.traces.NewRecorder()
	rec.StartSession(ctx)
	rec.StartTrace(ctx, traceName, task)

	start := time.Now()
	raw, err := o.provider.Complete(ctx, task)
	if err != nil {
		return "", newError(CodeAgentFailure, "agent invocation failed", err)
	}
	elapsed := time.Since(start)

	clean := Normalize(raw)

	rec.AddLLMSpan(ctx, telemetry.LLMSpan{
		Input:           task,
		Output:          clean,
		Model:           o.provider.Model(),
		NumInputTokens:  telemetry.ApproxTokens(task),
		NumOutputTokens: telemetry.ApproxTokens(clean),
		TotalTokens:     telemetry.ApproxTokens(task) + telemetry.ApproxTokens(clean),
		Duration:        elapsed,
	})
	rec.Conclude(ctx, clean)
	rec.Flush(ctx)

	return clean, nil
}

// Normalize maps an empty agent result to the failure marker and turns
// literal backslash-n escape sequences into real line breaks.
func Normalize(raw string) string {
	if raw == "" {
		return FailureMarker
	}
	return strings.ReplaceAll(raw, `\n`, "\n")
}
