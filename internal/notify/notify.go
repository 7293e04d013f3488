// Package notify posts operator notifications to an NTFY-compatible
// endpoint. Notification failures are the caller's to log and swallow;
// they must never affect the result of the operation being announced.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AnalysisComplete formats the notification sent after a successful
// analysis run.
func AnalysisComplete(tabCount int) string {
	return fmt.Sprintf("Tab analysis complete: %d tabs analyzed.", tabCount)
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
