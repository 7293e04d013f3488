// Command tabscan runs one discovery pass over the candidate debug ports
// and prints the resulting tab inventory as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jyothiv-codes/HackSprint/internal/cdp"
	"github.com/jyothiv-codes/HackSprint/internal/config"
	"github.com/jyothiv-codes/HackSprint/internal/scan"
)

func main() {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(h))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ports := cfg.CDPPorts
	if eps, err := config.LoadEndpoints(cfg.EndpointsConfig); err == nil {
		ports = eps.Ports()
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load endpoints config", "path", cfg.EndpointsConfig, "error", err)
		os.Exit(1)
	}

	prober := cdp.NewProber(cfg.CDPAddress,
		time.Duration(cfg.ProbeTimeoutMS)*time.Millisecond,
		time.Duration(cfg.PageReadTimeoutMS)*time.Millisecond)
	scanner := scan.NewScanner(prober, ports)

	outcome := scanner.Scan(context.Background())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		slog.Error("failed to encode outcome", "error", err)
		os.Exit(1)
	}
}
