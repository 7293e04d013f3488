package session

import (
	"time"

	"github.com/jyothiv-codes/HackSprint/internal/scan"
)

// ExportDocument is the structured export of one analysis. Its field set
// round-trips losslessly through encoding/json.
type ExportDocument struct {
	Timestamp string           `json:"timestamp"`
	TotalTabs int              `json:"total_tabs"`
	Task      string           `json:"task"`
	Analysis  string           `json:"analysis"`
	Tabs      []scan.TabRecord `json:"tabs"`
}

// BuildExport assembles the structured export from a session snapshot.
func BuildExport(s State) ExportDocument {
	return ExportDocument{
		Timestamp: s.FetchedAt.UTC().Format(time.RFC3339),
		TotalTabs: len(s.Tabs),
		Task:      s.Task,
		Analysis:  s.Analysis,
		Tabs:      s.Tabs,
	}
}

// TextExport returns the plain-text export: the analysis body as-is.
func TextExport(s State) string { return s.Analysis }

// ExportFilename builds the timestamped download filename for an export.
func ExportFilename(ext string, now time.Time) string {
	return "tab_analysis_" + now.Format("20060102_150405") + "." + ext
}
