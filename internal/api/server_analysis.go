package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jyothiv-codes/HackSprint/internal/session"
)

func registerAnalysisHandlers(api huma.API, svc Service) {
	type analyzeInput struct {
		Body struct {
			Task string `json:"task" doc:"Free-text instruction describing what to do with the tabs"`
		}
	}
	type analysisOutput struct {
		Body struct {
			Analysis   string    `json:"analysis"`
			Task       string    `json:"task"`
			TotalTabs  int       `json:"total_tabs"`
			AnalyzedAt time.Time `json:"analyzed_at"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "analyze-tabs", Method: http.MethodPost, Path: "/api/v1/analysis", Summary: "Analyze the current tab inventory with the agent", Tags: []string{"Analysis"}},
		func(ctx context.Context, input *analyzeInput) (*analysisOutput, error) {
			state, err := svc.Analyze(ctx, input.Body.Task)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &analysisOutput{}
			out.Body.Analysis = state.Analysis
			out.Body.Task = state.Task
			out.Body.TotalTabs = len(state.Tabs)
			out.Body.AnalyzedAt = state.AnalyzedAt
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-analysis", Method: http.MethodGet, Path: "/api/v1/analysis", Summary: "Get the last analysis result", Tags: []string{"Analysis"}},
		func(ctx context.Context, input *struct{}) (*analysisOutput, error) {
			state, err := svc.GetAnalysis(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &analysisOutput{}
			out.Body.Analysis = state.Analysis
			out.Body.Task = state.Task
			out.Body.TotalTabs = len(state.Tabs)
			out.Body.AnalyzedAt = state.AnalyzedAt
			return out, nil
		})
}

// exportHandler serves the analysis as a download in either plain-text or
// structured JSON form. Registered directly on the router so it can set
// download headers.
func exportHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.GetAnalysis(r.Context())
		if err != nil {
			http.Error(w, "no analysis result available", http.StatusNotFound)
			return
		}

		format := r.URL.Query().Get("format")
		if format == "" {
			format = "text"
		}

		switch format {
		case "text":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", attachment(session.ExportFilename("txt", time.Now())))
			if _, err := w.Write([]byte(session.TextExport(state))); err != nil {
				slog.Debug("text export write failed", "error", err)
			}
		case "json":
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", attachment(session.ExportFilename("json", time.Now())))
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(session.BuildExport(state)); err != nil {
				slog.Debug("json export write failed", "error", err)
			}
		default:
			http.Error(w, "unsupported format: "+format, http.StatusBadRequest)
		}
	}
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
