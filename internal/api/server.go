package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jyothiv-codes/HackSprint/internal/analyze"
	"github.com/jyothiv-codes/HackSprint/internal/events"
	"github.com/jyothiv-codes/HackSprint/internal/session"
)

// Service is the operation surface the API exposes.
type Service interface {
	ScanTabs(ctx context.Context) (session.State, error)
	ListTabs(ctx context.Context) (session.State, error)
	Analyze(ctx context.Context, task string) (session.State, error)
	GetAnalysis(ctx context.Context) (session.State, error)
}

// NewServer builds the HTTP handler: huma-described operations plus the
// docs page, the export download, and the WebSocket event stream.
func NewServer(svc Service, broker *events.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Chrome Tab Analyzer API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerTabHandlers(api, svc)
	registerAnalysisHandlers(api, svc)

	router.Get("/api/v1/analysis/export", exportHandler(svc))
	router.Get("/api/v1/events", events.WSHandler(broker))

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *analyze.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case analyze.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case analyze.CodeNoSession:
			return huma.Error404NotFound(coded.Message)
		case analyze.CodeAgentUnavailable:
			return huma.Error503ServiceUnavailable(coded.Message)
		case analyze.CodeAgentFailure:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
