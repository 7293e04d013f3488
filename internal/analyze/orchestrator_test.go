package analyze

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jyothiv-codes/HackSprint/internal/scan"
	"github.com/jyothiv-codes/HackSprint/internal/telemetry"
)

type fakeProvider struct {
	result   string
	err      error
	calls    int
	lastTask string
}

func (f *fakeProvider) Complete(_ context.Context, task string) (string, error) {
	f.calls++
	f.lastTask = task
	return f.result, f.err
}

func (f *fakeProvider) Model() string { return "fake-model" }

type recordingRecorder struct {
	sessions  int
	traces    int
	spans     []telemetry.LLMSpan
	concludes []string
	flushes   int
}

func (r *recordingRecorder) StartSession(context.Context) { r.sessions++ }
func (r *recordingRecorder) StartTrace(_ context.Context, _, _ string) {
	r.traces++
}
func (r *recordingRecorder) AddLLMSpan(_ context.Context, span telemetry.LLMSpan) {
	r.spans = append(r.spans, span)
}
func (r *recordingRecorder) Conclude(_ context.Context, output string) {
	r.concludes = append(r.concludes, output)
}
func (r *recordingRecorder) Flush(context.Context) { r.flushes++ }

type fakeTraces struct {
	rec telemetry.Recorder
}

func (f fakeTraces) NewRecorder() telemetry.Recorder { return f.rec }

func noTelemetry() TraceFactory {
	return fakeTraces{rec: &recordingRecorder{}}
}

func someTabs() []scan.TabRecord {
	return []scan.TabRecord{
		{Port: 9222, Window: 1, Tab: 1, URL: "https://go.dev/doc", Title: "Documentation"},
		{Port: 9222, Window: 1, Tab: 2, URL: "https://pkg.go.dev", Title: "Packages"},
	}
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var coded *CodedError
	require.ErrorAs(t, err, &coded)
	return coded.Code
}

func TestAnalyzeRejectsBlankInstructionBeforeAgentCall(t *testing.T) {
	provider := &fakeProvider{result: "ok"}
	o := NewOrchestrator(provider, noTelemetry())

	_, err := o.Analyze(context.Background(), someTabs(), "   ")

	require.Equal(t, CodeValidation, codeOf(t, err))
	require.Zero(t, provider.calls, "agent must not be invoked")
}

func TestAnalyzeRejectsEmptyInventoryBeforeAgentCall(t *testing.T) {
	provider := &fakeProvider{result: "ok"}
	o := NewOrchestrator(provider, noTelemetry())

	_, err := o.Analyze(context.Background(), nil, "summarize my tabs")

	require.Equal(t, CodeValidation, codeOf(t, err))
	require.Zero(t, provider.calls)
}

func TestAnalyzeWithoutProviderIsUnavailable(t *testing.T) {
	o := NewOrchestrator(nil, noTelemetry())

	_, err := o.Analyze(context.Background(), someTabs(), "summarize my tabs")

	require.Equal(t, CodeAgentUnavailable, codeOf(t, err))
}

func TestAnalyzeHandsComposedTaskToAgent(t *testing.T) {
	provider := &fakeProvider{result: "two dev tabs"}
	o := NewOrchestrator(provider, noTelemetry())

	out, err := o.Analyze(context.Background(), someTabs(), "summarize my tabs")

	require.NoError(t, err)
	require.Equal(t, "two dev tabs", out)
	require.Equal(t, BuildTask(someTabs(), "summarize my tabs"), provider.lastTask)
}

func TestAnalyzeEmptyAgentResultBecomesFailureMarker(t *testing.T) {
	rec := &recordingRecorder{}
	o := NewOrchestrator(&fakeProvider{result: ""}, fakeTraces{rec: rec})

	out, err := o.Analyze(context.Background(), someTabs(), "summarize my tabs")

	require.NoError(t, err)
	require.Equal(t, FailureMarker, out)
	// Degraded success still concludes and flushes the trace.
	require.Equal(t, []string{FailureMarker}, rec.concludes)
	require.Equal(t, 1, rec.flushes)
}

func TestAnalyzeUnescapesLiteralNewlines(t *testing.T) {
	o := NewOrchestrator(&fakeProvider{result: `line one\nline two`}, noTelemetry())

	out, err := o.Analyze(context.Background(), someTabs(), "summarize my tabs")

	require.NoError(t, err)
	require.Equal(t, "line one\nline two", out)
}

func TestAnalyzeHardAgentFailurePropagatesWithoutConclude(t *testing.T) {
	rec := &recordingRecorder{}
	o := NewOrchestrator(&fakeProvider{err: errors.New("upstream 500")}, fakeTraces{rec: rec})

	_, err := o.Analyze(context.Background(), someTabs(), "summarize my tabs")

	require.Equal(t, CodeAgentFailure, codeOf(t, err))
	require.Equal(t, 1, rec.sessions)
	require.Equal(t, 1, rec.traces)
	require.Empty(t, rec.spans, "failed invocations record no span")
	require.Empty(t, rec.concludes, "failed invocations never conclude the trace")
}

func TestAnalyzeRecordsSpanWithApproxTokens(t *testing.T) {
	rec := &recordingRecorder{}
	o := NewOrchestrator(&fakeProvider{result: "the analysis text"}, fakeTraces{rec: rec})

	_, err := o.Analyze(context.Background(), someTabs(), "summarize my tabs")

	require.NoError(t, err)
	require.Len(t, rec.spans, 1)
	span := rec.spans[0]
	require.Equal(t, "fake-model", span.Model)
	require.Equal(t, telemetry.ApproxTokens(span.Input), span.NumInputTokens)
	require.Equal(t, telemetry.ApproxTokens(span.Output), span.NumOutputTokens)
	require.Equal(t, span.NumInputTokens+span.NumOutputTokens, span.TotalTokens)
}

func TestAnalyzeOutputUnaffectedByTelemetryBackendFailure(t *testing.T) {
	provider := &fakeProvider{result: "stable result"}

	// A configured backend whose every request fails.
	failing := telemetry.NewAdapter("http://telemetry.invalid", "key", "proj", "stream", &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connect: connection refused")
		}),
	})
	withFailing, err := NewOrchestrator(provider, failing).Analyze(context.Background(), someTabs(), "summarize my tabs")
	require.NoError(t, err)

	// No backend configured at all.
	disabled := telemetry.NewAdapter("", "", "proj", "stream", nil)
	withDisabled, err := NewOrchestrator(provider, disabled).Analyze(context.Background(), someTabs(), "summarize my tabs")
	require.NoError(t, err)

	require.Equal(t, withDisabled, withFailing)
	require.Equal(t, "stable result", withFailing)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
