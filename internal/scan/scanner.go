package scan

import (
	"context"
	"log/slog"
	"time"
)

// Scanner walks a fixed ordered list of candidate debug ports and
// aggregates tab records from every reachable browser instance.
type Scanner struct {
	prober Prober
	ports  []int
}

func NewScanner(prober Prober, ports []int) *Scanner {
	return &Scanner{prober: prober, ports: ports}
}

// Scan probes each candidate port in order and concatenates the extracted
// records. It never fails: an unreachable endpoint is simply absent from
// the reachable list and cannot affect any other endpoint's result.
func (s *Scanner) Scan(ctx context.Context) Outcome {
	out := Outcome{FetchedAt: time.Now().UTC()}

	for _, port := range s.ports {
		conn, err := s.prober.Probe(ctx, port)
		if err != nil {
			slog.Debug("endpoint unreachable", "port", port, "error", err)
			continue
		}
		records := collectEndpoint(ctx, port, conn)
		out.Records = append(out.Records, records...)
		out.ReachablePorts = append(out.ReachablePorts, port)
		slog.Info("endpoint scanned", "port", port, "tabs", len(records))
	}

	slog.Info("scan complete",
		"reachable_ports", out.ReachablePorts,
		"total_tabs", len(out.Records),
	)
	return out
}

// collectEndpoint extracts all records for one connection. The connection
// is released on every exit path, extraction outcome notwithstanding.
func collectEndpoint(ctx context.Context, port int, conn Conn) []TabRecord {
	defer conn.Close()

	var records []TabRecord
	for i, bc := range conn.BrowsingContexts() {
		records = append(records, ExtractContext(ctx, port, i+1, bc.Pages())...)
	}
	return records
}
