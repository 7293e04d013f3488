package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jyothiv-codes/HackSprint/internal/agent"
	"github.com/jyothiv-codes/HackSprint/internal/analyze"
	"github.com/jyothiv-codes/HackSprint/internal/api"
	"github.com/jyothiv-codes/HackSprint/internal/browser"
	"github.com/jyothiv-codes/HackSprint/internal/cdp"
	"github.com/jyothiv-codes/HackSprint/internal/config"
	"github.com/jyothiv-codes/HackSprint/internal/controller"
	"github.com/jyothiv-codes/HackSprint/internal/events"
	"github.com/jyothiv-codes/HackSprint/internal/netutil"
	"github.com/jyothiv-codes/HackSprint/internal/scan"
	"github.com/jyothiv-codes/HackSprint/internal/session"
	"github.com/jyothiv-codes/HackSprint/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("tab analyzer config loaded",
		"cdp_address", cfg.CDPAddress,
		"cdp_ports", cfg.CDPPorts,
		"bind_addr", cfg.BindAddr,
		"probe_timeout_ms", cfg.ProbeTimeoutMS,
		"auto_launch", cfg.AutoLaunch,
		"telemetry_enabled", cfg.TelemetryEndpoint != "" && cfg.TelemetryAPIKey != "",
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	if cfg.AgentAPIKey == "" {
		slog.Warn("BROWSER_USE_API_KEY not set; tab discovery works but analysis will be unavailable")
	}

	ports := cfg.CDPPorts
	if eps, err := config.LoadEndpoints(cfg.EndpointsConfig); err == nil {
		ports = eps.Ports()
		slog.Info("candidate ports overridden from endpoints config", "path", cfg.EndpointsConfig, "ports", ports)
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load endpoints config", "path", cfg.EndpointsConfig, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AutoLaunch {
		launchers := launchBrowsers(ctx, cfg, ports)
		defer func() {
			for _, l := range launchers {
				l.Stop()
			}
		}()
	}

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	prober := cdp.NewProber(cfg.CDPAddress,
		time.Duration(cfg.ProbeTimeoutMS)*time.Millisecond,
		time.Duration(cfg.PageReadTimeoutMS)*time.Millisecond)
	scanner := scan.NewScanner(prober, ports)

	var provider agent.Provider
	if cfg.AgentAPIKey != "" {
		p, err := agent.NewOpenAIProvider(cfg.AgentAPIKey,
			agent.WithModel(cfg.AgentModel),
			agent.WithBaseURL(cfg.AgentBaseURL))
		if err != nil {
			slog.Error("failed to create agent provider", "error", err)
			os.Exit(1)
		}
		provider = p
	}

	adapter := telemetry.NewAdapter(cfg.TelemetryEndpoint, cfg.TelemetryAPIKey, cfg.ProjectName, cfg.LogStream, nil)
	orch := analyze.NewOrchestrator(provider, adapter)

	sessions := session.NewStore()
	broker := events.NewBroker()
	svc := controller.NewService(scanner, orch, sessions, broker,
		controller.WithNotification(cfg.NotifyEndpoint, nil))

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc, broker)}

	go func() {
		slog.Info("tab analyzer listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}

// launchBrowsers starts one Chrome instance per candidate port that is not
// already serving a debugger. A port that fails to launch is skipped; the
// scanner will simply report it unreachable.
func launchBrowsers(ctx context.Context, cfg *config.Config, ports []int) []*browser.Launcher {
	var launchers []*browser.Launcher
	for _, port := range ports {
		l := browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    port,
			ProfileDir: cfg.ProfileDir,
		})
		if err := l.Launch(ctx); err != nil {
			slog.Warn("browser launch failed", "port", port, "error", err)
			continue
		}
		if l.Running() {
			launchers = append(launchers, l)
		}
	}
	return launchers
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
