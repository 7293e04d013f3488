package scan

import (
	"context"
	"time"
)

// TabRecord is one observed browser tab. Window and Tab are 1-based
// enumeration positions scoped to the scan that produced them; they are
// not stable across scans.
type TabRecord struct {
	Port   int    `json:"port"`
	Window int    `json:"window"`
	Tab    int    `json:"tab"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// Outcome is the aggregate report of one scan pass. Records preserves
// port order, then browsing-context order, then page order. A scan where
// every endpoint is unreachable yields empty slices, not an error.
type Outcome struct {
	Records        []TabRecord `json:"tabs"`
	ReachablePorts []int       `json:"reachable_ports"`
	FetchedAt      time.Time   `json:"fetched_at"`
}

// Prober attempts a single connection to one remote-debugging endpoint.
// Any connection failure (refused, timeout, protocol mismatch) is returned
// as an error and treated by the Scanner as "unreachable"; the caller owns
// the returned Conn and must release it.
type Prober interface {
	Probe(ctx context.Context, port int) (Conn, error)
}

// Conn is a live connection to one browser instance. BrowsingContexts is
// fixed at probe time and preserves the browser's enumeration order.
type Conn interface {
	BrowsingContexts() []BrowsingContext
	Close()
}

// BrowsingContext is one window-like container holding an ordered page list.
type BrowsingContext interface {
	Pages() []Page
}

// Page is one tab. Properties reads the live URL and title; the read fails
// when the page was closed or navigated away mid-scan.
type Page interface {
	Properties(ctx context.Context) (url, title string, err error)
}
