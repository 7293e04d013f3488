// Package cdp implements the scan interfaces on top of chromedp against
// Chrome instances exposing a remote-debugging port.
package cdp

import (
	"context"
	"fmt"
	"time"

	cdpruntime "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/jyothiv-codes/HackSprint/internal/scan"
)

// Prober connects to one remote-debugging endpoint per Probe call.
type Prober struct {
	address         string
	probeTimeout    time.Duration
	pageReadTimeout time.Duration
}

func NewProber(address string, probeTimeout, pageReadTimeout time.Duration) *Prober {
	return &Prober{
		address:         address,
		probeTimeout:    probeTimeout,
		pageReadTimeout: pageReadTimeout,
	}
}

// Probe attempts a CDP connection to the endpoint and enumerates its page
// targets, grouped into browsing contexts in first-seen order. Any failure
// within the probe timeout maps to an "unreachable" error; the returned
// connection owns the allocator and must be closed by the caller.
func (p *Prober) Probe(ctx context.Context, port int) (scan.Conn, error) {
	cdpURL := fmt.Sprintf("http://%s:%d", p.address, port)
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), cdpURL)

	tempCtx, tempCancel := chromedp.NewContext(allocCtx)
	c := &conn{allocCancel: allocCancel, tempCancel: tempCancel}

	runCtx, runCancel := context.WithTimeout(tempCtx, p.probeTimeout)
	defer runCancel()

	if err := chromedp.Run(runCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect to %s: %w", cdpURL, err)
	}

	targets, err := chromedp.Targets(runCtx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("enumerate targets on %s: %w", cdpURL, err)
	}

	// The temp context attached as its own target; it must not show up as
	// a page of the instance being scanned.
	var selfID target.ID
	if tc := chromedp.FromContext(tempCtx); tc != nil && tc.Target != nil {
		selfID = tc.Target.TargetID
	}

	c.contexts = groupByBrowsingContext(targets, selfID, func(id target.ID) scan.Page {
		return &page{parent: allocCtx, targetID: id, readTimeout: p.pageReadTimeout}
	})
	return c, nil
}

// groupByBrowsingContext buckets page targets by their browser context ID,
// preserving both first-seen context order and page order within a context.
func groupByBrowsingContext(targets []*target.Info, selfID target.ID, newPage func(target.ID) scan.Page) []scan.BrowsingContext {
	var order []cdpruntime.BrowserContextID
	groups := make(map[cdpruntime.BrowserContextID][]scan.Page)

	for _, t := range targets {
		if t.Type != "page" || t.TargetID == selfID {
			continue
		}
		if _, seen := groups[t.BrowserContextID]; !seen {
			order = append(order, t.BrowserContextID)
		}
		groups[t.BrowserContextID] = append(groups[t.BrowserContextID], newPage(t.TargetID))
	}

	contexts := make([]scan.BrowsingContext, 0, len(order))
	for _, id := range order {
		contexts = append(contexts, browsingContext{pages: groups[id]})
	}
	return contexts
}

type conn struct {
	allocCancel context.CancelFunc
	tempCancel  context.CancelFunc
	contexts    []scan.BrowsingContext
}

func (c *conn) BrowsingContexts() []scan.BrowsingContext { return c.contexts }

func (c *conn) Close() {
	c.tempCancel()
	c.allocCancel()
}

type browsingContext struct {
	pages []scan.Page
}

func (b browsingContext) Pages() []scan.Page { return b.pages }

type page struct {
	parent      context.Context
	targetID    target.ID
	readTimeout time.Duration
}

// Properties attaches to the page target and reads its live location and
// title. The attach is scoped to this read and released before returning.
func (pg *page) Properties(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	pageCtx, cancel := chromedp.NewContext(pg.parent, chromedp.WithTargetID(pg.targetID))
	defer cancel()

	runCtx, runCancel := context.WithTimeout(pageCtx, pg.readTimeout)
	defer runCancel()

	var url, title string
	if err := chromedp.Run(runCtx, chromedp.Location(&url), chromedp.Title(&title)); err != nil {
		return "", "", err
	}
	return url, title, nil
}
