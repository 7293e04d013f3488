// Package controller wires the discovery scanner, the analysis
// orchestrator, and the session store into the operations exposed by the
// HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jyothiv-codes/HackSprint/internal/analyze"
	"github.com/jyothiv-codes/HackSprint/internal/events"
	"github.com/jyothiv-codes/HackSprint/internal/notify"
	"github.com/jyothiv-codes/HackSprint/internal/scan"
	"github.com/jyothiv-codes/HackSprint/internal/session"
)

// Scanner runs one discovery pass over the candidate endpoints.
type Scanner interface {
	Scan(ctx context.Context) scan.Outcome
}

// Orchestrator runs one analysis over an inventory.
type Orchestrator interface {
	Analyze(ctx context.Context, records []scan.TabRecord, instruction string) (string, error)
}

// Service implements the API operations over the session state.
type Service struct {
	scanner  Scanner
	orch     Orchestrator
	sessions *session.Store
	broker   *events.Broker

	notifyEndpoint string
	notifyClient   *http.Client
}

// Option configures a Service.
type Option func(*Service)

// WithNotification enables operator notifications after completed analyses.
func WithNotification(endpoint string, client *http.Client) Option {
	return func(s *Service) {
		s.notifyEndpoint = endpoint
		s.notifyClient = client
	}
}

func NewService(scanner Scanner, orch Orchestrator, sessions *session.Store, broker *events.Broker, opts ...Option) *Service {
	s := &Service{
		scanner:  scanner,
		orch:     orch,
		sessions: sessions,
		broker:   broker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanTabs runs one discovery pass and replaces the session with its
// outcome. An all-unreachable scan is a valid empty result, not an error.
func (s *Service) ScanTabs(ctx context.Context) (session.State, error) {
	s.broker.Publish(events.TypeScanStarted, nil)

	outcome := s.scanner.Scan(ctx)
	s.sessions.SetScan(outcome)

	s.broker.Publish(events.TypeScanCompleted, map[string]any{
		"total_tabs":      len(outcome.Records),
		"reachable_ports": outcome.ReachablePorts,
	})
	return s.sessions.Snapshot(), nil
}

// ListTabs returns the current inventory.
func (s *Service) ListTabs(ctx context.Context) (session.State, error) {
	_ = ctx
	state := s.sessions.Snapshot()
	if !state.HasScan() {
		return session.State{}, &analyze.CodedError{Code: analyze.CodeNoSession, Message: "no scan has been run yet"}
	}
	return state, nil
}

// Analyze runs the orchestrator over the current inventory and stores the
// result. Agent hard failures propagate to the API layer.
func (s *Service) Analyze(ctx context.Context, task string) (session.State, error) {
	state := s.sessions.Snapshot()

	s.broker.Publish(events.TypeAnalysisStarted, map[string]any{"total_tabs": len(state.Tabs)})

	text, err := s.orch.Analyze(ctx, state.Tabs, task)
	if err != nil {
		s.broker.Publish(events.TypeAnalysisFailed, map[string]any{"error": err.Error()})
		return session.State{}, err
	}

	s.sessions.SetAnalysis(task, text)
	result := s.sessions.Snapshot()

	s.broker.Publish(events.TypeAnalysisCompleted, map[string]any{"total_tabs": len(result.Tabs)})
	s.notifyCompletion(ctx, len(result.Tabs))

	return result, nil
}

// GetAnalysis returns the last analysis held by the session.
func (s *Service) GetAnalysis(ctx context.Context) (session.State, error) {
	_ = ctx
	state := s.sessions.Snapshot()
	if !state.HasAnalysis() {
		return session.State{}, &analyze.CodedError{Code: analyze.CodeNoSession, Message: "no analysis result available"}
	}
	return state, nil
}

func (s *Service) notifyCompletion(ctx context.Context, tabCount int) {
	if s.notifyEndpoint == "" {
		return
	}
	if err := notify.Send(ctx, s.notifyClient, s.notifyEndpoint, notify.AnalysisComplete(tabCount)); err != nil {
		slog.Warn("completion notification failed", "endpoint", s.notifyEndpoint, "error", err)
	}
}
