package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the tab analyzer service.
type Config struct {
	// CDP discovery settings
	CDPAddress        string
	CDPPorts          []int
	EndpointsConfig   string
	ProbeTimeoutMS    int
	PageReadTimeoutMS int

	// HTTP API settings
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Agent settings
	AgentAPIKey  string
	AgentBaseURL string
	AgentModel   string

	// Telemetry settings
	TelemetryEndpoint string
	TelemetryAPIKey   string
	ProjectName       string
	LogStream         string

	// Operator notification
	NotifyEndpoint string

	// Browser auto-launch
	AutoLaunch bool
	ProfileDir string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:        getEnvOrDefault("CHROME_CDP_ADDRESS", "127.0.0.1"),
		EndpointsConfig:   getEnvOrDefault("TAB_ENDPOINTS_CONFIG", "./config/endpoints.yaml"),
		ProbeTimeoutMS:    getEnvIntOrDefault("SCAN_PROBE_TIMEOUT_MS", 3000),
		PageReadTimeoutMS: getEnvIntOrDefault("SCAN_PAGE_READ_TIMEOUT_MS", 2000),
		BindAddr:          getEnvOrDefault("ANALYZER_BIND_ADDR", "127.0.0.1:8190"),
		PortAutoFallback:  getEnvBoolOrDefault("ANALYZER_PORT_AUTO_FALLBACK", true),
		AgentAPIKey:       os.Getenv("BROWSER_USE_API_KEY"),
		AgentBaseURL:      getEnvOrDefault("BROWSER_USE_BASE_URL", "https://api.openai.com/v1"),
		AgentModel:        getEnvOrDefault("BROWSER_USE_MODEL", "gpt-4o"),
		TelemetryEndpoint: os.Getenv("GALILEO_CONSOLE_URL"),
		TelemetryAPIKey:   os.Getenv("GALILEO_API_KEY"),
		ProjectName:       getEnvOrDefault("GALILEO_PROJECT_NAME", "chrome-tab-analyzer"),
		LogStream:         getEnvOrDefault("GALILEO_LOG_STREAM", "tab-analysis"),
		NotifyEndpoint:    os.Getenv("ANALYZER_NOTIFY_ENDPOINT"),
		AutoLaunch:        getEnvBoolOrDefault("ANALYZER_AUTO_LAUNCH", false),
		ProfileDir:        getEnvOrDefault("ANALYZER_PROFILE_DIR", "/tmp/chrome-debug"),
		LogLevel:          strings.ToLower(getEnvOrDefault("ANALYZER_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("ANALYZER_LOG_FILE", "logs/tab_analyzer.log"),
	}

	ports, err := parsePorts(getEnvOrDefault("CHROME_CDP_PORTS", "9222,9223,9224,9225,9226"))
	if err != nil {
		return nil, fmt.Errorf("CHROME_CDP_PORTS: %w", err)
	}
	cfg.CDPPorts = ports

	cfg.PortCandidates = []string{cfg.BindAddr, "127.0.0.1:8191", "127.0.0.1:8192"}

	// Worst-case scan latency scales with the number of unreachable
	// candidate ports, so the probe timeout has a floor, not a ceiling.
	if cfg.ProbeTimeoutMS < 500 {
		cfg.ProbeTimeoutMS = 500
	}
	if cfg.PageReadTimeoutMS < 250 {
		cfg.PageReadTimeoutMS = 250
	}

	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint for a given debug port.
func (c *Config) CDPURL(port int) string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, port)
}

func parsePorts(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ports := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		if n < 1 || n > 65535 {
			return nil, fmt.Errorf("port out of range: %d", n)
		}
		ports = append(ports, n)
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("no candidate ports")
	}
	return ports, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
