// Package agent wraps the external analysis agent behind a small provider
// interface so the orchestrator never depends on a concrete backend.
package agent

import "context"

// Provider accepts a task string as its sole directive and returns the
// agent's terminal free-text result. An error is a hard failure of the
// invocation itself; an empty result string is not an error.
type Provider interface {
	Complete(ctx context.Context, task string) (string, error)
	Model() string
}
