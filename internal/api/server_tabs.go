package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jyothiv-codes/HackSprint/internal/scan"
)

// portGroup is the per-instance view of the inventory used for display.
// Grouping never reorders records: tabs keep their scan order within each
// group, and groups follow first appearance in the record sequence.
type portGroup struct {
	Port int              `json:"port"`
	Tabs []scan.TabRecord `json:"tabs"`
}

func groupByPort(records []scan.TabRecord) []portGroup {
	var order []int
	byPort := make(map[int][]scan.TabRecord)
	for _, r := range records {
		if _, seen := byPort[r.Port]; !seen {
			order = append(order, r.Port)
		}
		byPort[r.Port] = append(byPort[r.Port], r)
	}
	groups := make([]portGroup, 0, len(order))
	for _, port := range order {
		groups = append(groups, portGroup{Port: port, Tabs: byPort[port]})
	}
	return groups
}

func registerTabHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type scanOutput struct {
		Body struct {
			TotalTabs      int              `json:"total_tabs"`
			ReachablePorts []int            `json:"reachable_ports"`
			FetchedAt      time.Time        `json:"fetched_at"`
			Tabs           []scan.TabRecord `json:"tabs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "scan-tabs", Method: http.MethodPost, Path: "/api/v1/tabs/scan", Summary: "Scan all candidate debug ports for open tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*scanOutput, error) {
			state, err := svc.ScanTabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &scanOutput{}
			out.Body.TotalTabs = len(state.Tabs)
			out.Body.ReachablePorts = state.ReachablePorts
			out.Body.FetchedAt = state.FetchedAt
			out.Body.Tabs = state.Tabs
			return out, nil
		})

	type tabsOutput struct {
		Body struct {
			TotalTabs      int              `json:"total_tabs"`
			ReachablePorts []int            `json:"reachable_ports"`
			FetchedAt      time.Time        `json:"fetched_at"`
			Tabs           []scan.TabRecord `json:"tabs"`
			Instances      []portGroup      `json:"instances"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List the current tab inventory", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabsOutput, error) {
			state, err := svc.ListTabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabsOutput{}
			out.Body.TotalTabs = len(state.Tabs)
			out.Body.ReachablePorts = state.ReachablePorts
			out.Body.FetchedAt = state.FetchedAt
			out.Body.Tabs = state.Tabs
			out.Body.Instances = groupByPort(state.Tabs)
			return out, nil
		})
}
