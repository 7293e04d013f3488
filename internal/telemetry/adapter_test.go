package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
	}
}

func TestAdapterUnavailableWithoutConfig(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		apiKey   string
	}{
		{"no endpoint", "", "key"},
		{"no key", "http://backend.test", ""},
		{"neither", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(tt.endpoint, tt.apiKey, "proj", "stream", nil)
			if a.Available() {
				t.Fatal("adapter reports available without full config")
			}
		})
	}
}

func TestUnavailableAdapterNeverTouchesNetwork(t *testing.T) {
	calls := 0
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return okResponse(), nil
	})}

	rec := NewAdapter("", "", "proj", "stream", client).NewRecorder()
	ctx := context.Background()
	rec.StartSession(ctx)
	rec.StartTrace(ctx, "t", "in")
	rec.AddLLMSpan(ctx, LLMSpan{Input: "in", Output: "out"})
	rec.Conclude(ctx, "out")
	rec.Flush(ctx)

	if calls != 0 {
		t.Fatalf("got %d backend calls; want 0", calls)
	}
}

func TestRecorderLifecyclePostsInOrder(t *testing.T) {
	var paths []string
	var auth string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		paths = append(paths, r.URL.Path)
		auth = r.Header.Get("Authorization")
		return okResponse(), nil
	})}

	rec := NewAdapter("http://backend.test/", "secret", "proj", "stream", client).NewRecorder()
	ctx := context.Background()
	rec.StartSession(ctx)
	rec.StartTrace(ctx, "Browser Tab Analysis", "task text")
	rec.AddLLMSpan(ctx, LLMSpan{Input: "task text", Output: "result", Duration: time.Second})
	rec.Conclude(ctx, "result")
	rec.Flush(ctx)

	if len(paths) != 5 {
		t.Fatalf("got %d backend calls (%v); want 5", len(paths), paths)
	}
	wantPrefixes := []string{
		"/api/v1/sessions",
		"/api/v1/traces",
		"/api/v1/traces/", // span post includes the trace id
		"/api/v1/traces/",
		"/api/v1/flush",
	}
	for i, want := range wantPrefixes {
		if !strings.HasPrefix(paths[i], want) {
			t.Errorf("call %d path = %q; want prefix %q", i, paths[i], want)
		}
	}
	if !strings.HasSuffix(paths[2], "/spans") {
		t.Errorf("span path = %q; want /spans suffix", paths[2])
	}
	if !strings.HasSuffix(paths[3], "/conclude") {
		t.Errorf("conclude path = %q; want /conclude suffix", paths[3])
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q; want %q", auth, "Bearer secret")
	}
}

func TestRecorderSkipsForwardAfterBackendFailure(t *testing.T) {
	calls := 0
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("connection refused")
	})}

	rec := NewAdapter("http://backend.test", "key", "proj", "stream", client).NewRecorder()
	ctx := context.Background()
	rec.StartSession(ctx)
	rec.StartTrace(ctx, "t", "in")
	rec.AddLLMSpan(ctx, LLMSpan{})
	rec.Conclude(ctx, "out")
	rec.Flush(ctx)

	// Only the session start hits the wire; every later step skips.
	if calls != 1 {
		t.Fatalf("got %d backend calls; want 1", calls)
	}
}

func TestRecorderTreatsNon2xxAsFailure(t *testing.T) {
	calls := 0
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader(`{"error":"bad key"}`)),
		}, nil
	})}

	rec := NewAdapter("http://backend.test", "wrong", "proj", "stream", client).NewRecorder()
	ctx := context.Background()
	rec.StartSession(ctx)
	rec.StartTrace(ctx, "t", "in")

	if calls != 1 {
		t.Fatalf("got %d backend calls; want 1", calls)
	}
}

func TestAdapterHandsOutIndependentRecorders(t *testing.T) {
	fail := true
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		if fail {
			return nil, errors.New("transient outage")
		}
		return okResponse(), nil
	})}
	a := NewAdapter("http://backend.test", "key", "proj", "stream", client)

	// First analysis hits the outage and goes dark.
	first := a.NewRecorder()
	first.StartSession(context.Background())

	// The backend recovers; the next analysis must start clean.
	fail = false
	calls := 0
	a.client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return okResponse(), nil
	})}
	second := a.NewRecorder()
	second.StartSession(context.Background())

	if calls != 1 {
		t.Fatalf("got %d backend calls from fresh recorder; want 1", calls)
	}
}

func TestApproxTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abcd", 1},
		{strings.Repeat("x", 401), 100},
	}
	for _, tt := range tests {
		if got := ApproxTokens(tt.text); got != tt.want {
			t.Errorf("ApproxTokens(%d chars) = %d; want %d", len(tt.text), got, tt.want)
		}
	}
}
