package config

import (
	"fmt"
	"os"
	"strings"
)

// Default configuration values
const (
	DefaultDomain   = "localhost:8080"
	DefaultSTUN     = "stun:stun.l.google.com:19302"
	DefaultTURN     = "" // optional, empty by default
	DefaultTURNUser = ""
	DefaultTURNPass = ""
)

// Config holds application configuration
type Config struct {
	// Domain is the chat server host[:port]
	Domain string

	// TLS selects wss/https URLs; plain ws/http is the default for
	// localhost development servers
	TLS bool

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// Options for loading config with CLI flag overrides
type Options struct {
	Domain     string
	TLS        bool
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	cfg := &Config{
		Domain:     firstOf(opts.Domain, os.Getenv("DOMAIN"), DefaultDomain),
		STUNServer: firstOf(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN),
		TURNServer: firstOf(opts.TURNServer, os.Getenv("TURN_SERVER"), DefaultTURN),
		TURNUser:   firstOf(opts.TURNUser, os.Getenv("TURN_USERNAME"), DefaultTURNUser),
		TURNPass:   firstOf(opts.TURNPass, os.Getenv("TURN_PASSWORD"), DefaultTURNPass),
	}

	cfg.TLS = opts.TLS || os.Getenv("USE_TLS") == "1"
	if strings.Contains(cfg.Domain, "://") {
		return nil, fmt.Errorf("domain %q must not contain a scheme", cfg.Domain)
	}

	return cfg, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// WebSocketBase returns the ws(s)://host base for signaling connections
func (c *Config) WebSocketBase() string {
	if c.TLS {
		return fmt.Sprintf("wss://%s", c.Domain)
	}
	return fmt.Sprintf("ws://%s", c.Domain)
}

// APIBase returns the http(s)://host base for REST requests
func (c *Config) APIBase() string {
	if c.TLS {
		return fmt.Sprintf("https://%s", c.Domain)
	}
	return fmt.Sprintf("http://%s", c.Domain)
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
		fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
