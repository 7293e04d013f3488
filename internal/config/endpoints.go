package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EndpointEntry describes a single candidate remote-debugging endpoint.
type EndpointEntry struct {
	Port int `yaml:"port"`
}

// EndpointsConfig is the top-level YAML configuration for candidate ports.
type EndpointsConfig struct {
	Endpoints []EndpointEntry `yaml:"endpoints"`
}

// LoadEndpoints reads and validates an endpoints YAML config file.
// Returns an os.ErrNotExist-wrapped error if the file is absent (caller
// silently falls back to the env port list in that case).
func LoadEndpoints(path string) (*EndpointsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("endpoints config: %w", err)
	}
	var cfg EndpointsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("endpoints config: %w", err)
	}
	if len(cfg.Endpoints) < 1 {
		return nil, fmt.Errorf("endpoints config: at least one endpoint entry is required")
	}
	for i, e := range cfg.Endpoints {
		if e.Port < 1 || e.Port > 65535 {
			return nil, fmt.Errorf("endpoints config: endpoints[%d] port out of range: %d", i, e.Port)
		}
	}
	return &cfg, nil
}

// Ports flattens the endpoint entries into a port list.
func (c *EndpointsConfig) Ports() []int {
	ports := make([]int, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		ports = append(ports, e.Port)
	}
	return ports
}
