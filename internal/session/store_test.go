package session

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/jyothiv-codes/HackSprint/internal/scan"
)

func sampleOutcome() scan.Outcome {
	return scan.Outcome{
		Records: []scan.TabRecord{
			{Port: 9222, Window: 1, Tab: 1, URL: "https://go.dev/doc", Title: "Documentation"},
		},
		ReachablePorts: []int{9222},
		FetchedAt:      time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestStoreStartsEmpty(t *testing.T) {
	s := NewStore().Snapshot()
	if s.HasScan() {
		t.Fatal("fresh store reports a scan")
	}
	if s.HasAnalysis() {
		t.Fatal("fresh store reports an analysis")
	}
}

func TestSetScanReplacesStateAndDiscardsAnalysis(t *testing.T) {
	st := NewStore()
	st.SetScan(sampleOutcome())
	st.SetAnalysis("summarize", "one dev tab")

	fresh := scan.Outcome{
		Records:        []scan.TabRecord{{Port: 9223, Window: 1, Tab: 1, URL: "https://x.test", Title: "X"}},
		ReachablePorts: []int{9223},
		FetchedAt:      time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC),
	}
	st.SetScan(fresh)

	got := st.Snapshot()
	if got.HasAnalysis() {
		t.Fatalf("analysis survived a rescan: %q", got.Analysis)
	}
	if got.Task != "" {
		t.Fatalf("task survived a rescan: %q", got.Task)
	}
	if !reflect.DeepEqual(got.Tabs, fresh.Records) {
		t.Fatalf("Tabs = %+v; want %+v", got.Tabs, fresh.Records)
	}
	if !reflect.DeepEqual(got.ReachablePorts, []int{9223}) {
		t.Fatalf("ReachablePorts = %v; want [9223]", got.ReachablePorts)
	}
}

func TestSetAnalysisKeepsScan(t *testing.T) {
	st := NewStore()
	st.SetScan(sampleOutcome())
	st.SetAnalysis("summarize", "one dev tab")

	got := st.Snapshot()
	if !got.HasScan() || !got.HasAnalysis() {
		t.Fatalf("HasScan=%v HasAnalysis=%v; want both true", got.HasScan(), got.HasAnalysis())
	}
	if got.Analysis != "one dev tab" || got.Task != "summarize" {
		t.Fatalf("analysis=%q task=%q", got.Analysis, got.Task)
	}
	if got.AnalyzedAt.IsZero() {
		t.Fatal("AnalyzedAt not stamped")
	}
}

func TestSnapshotIsolatedFromLaterMutations(t *testing.T) {
	st := NewStore()
	st.SetScan(sampleOutcome())

	snap := st.Snapshot()
	st.SetScan(scan.Outcome{FetchedAt: time.Now().UTC()})

	if len(snap.Tabs) != 1 || snap.Tabs[0].URL != "https://go.dev/doc" {
		t.Fatalf("snapshot mutated: %+v", snap.Tabs)
	}
}

func TestBuildExportRoundTripsThroughJSON(t *testing.T) {
	st := NewStore()
	st.SetScan(sampleOutcome())
	st.SetAnalysis("summarize", "one dev tab")

	doc := BuildExport(st.Snapshot())
	if doc.Timestamp != "2026-08-30T12:00:00Z" {
		t.Fatalf("Timestamp = %q", doc.Timestamp)
	}
	if doc.TotalTabs != 1 {
		t.Fatalf("TotalTabs = %d; want 1", doc.TotalTabs)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ExportDocument
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, doc) {
		t.Fatalf("round trip changed document:\n got %+v\nwant %+v", back, doc)
	}
}

func TestTextExportIsAnalysisBody(t *testing.T) {
	if got := TextExport(State{Analysis: "body\ntext"}); got != "body\ntext" {
		t.Fatalf("TextExport = %q", got)
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	if got, want := ExportFilename("txt", now), "tab_analysis_20260830_140509.txt"; got != want {
		t.Fatalf("ExportFilename = %q; want %q", got, want)
	}
	if got, want := ExportFilename("json", now), "tab_analysis_20260830_140509.json"; got != want {
		t.Fatalf("ExportFilename = %q; want %q", got, want)
	}
}
