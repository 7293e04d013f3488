package scan

import (
	"context"
	"log/slog"
	"strings"
)

// ExtractContext normalizes one browsing context's pages into tab records.
// Tab numbers are enumeration positions, so a page that is skipped or
// filtered still consumes its index. Page order is preserved as observed.
func ExtractContext(ctx context.Context, port, window int, pages []Page) []TabRecord {
	records := make([]TabRecord, 0, len(pages))
	for i, p := range pages {
		url, title, err := p.Properties(ctx)
		if err != nil {
			// Page closed or navigated away mid-scan; drop it, keep the rest.
			slog.Debug("page read failed", "port", port, "window", window, "tab", i+1, "error", err)
			continue
		}
		if !IsContentURL(url) {
			continue
		}
		records = append(records, TabRecord{
			Port:   port,
			Window: window,
			Tab:    i + 1,
			URL:    url,
			Title:  title,
		})
	}
	return records
}

// IsContentURL reports whether a URL belongs to a real content page.
// Blank/new-tab placeholders and browser-internal pages do not.
func IsContentURL(url string) bool {
	switch url {
	case "", "about:blank", "chrome://newtab/":
		return false
	}
	return !strings.HasPrefix(url, "chrome://")
}
