// Package deviceconfig resolves and validates the connection parameters for a
// single edge device, either from a bare address in the target URI or from a
// YAML config file.
package deviceconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	appconfig "edgedeploy/cmd/edgedeploy/config"
	"edgedeploy/internal/logger"

	"gopkg.in/yaml.v3"
)

// Scheme is the custom scheme expected in target URIs, e.g.
// edge://10.0.0.5 or edge://lab_device.yaml.
const Scheme = "edge"

// defaultKeyFiles are probed, in order, when neither a key path nor a
// password is configured.
var defaultKeyFiles = []string{
	".ssh/edge_key",
	".ssh/id_rsa",
	".ssh/id_ed25519",
}

// Config holds validated, immutable connection and deployment parameters for
// one target device.
type Config struct {
	DeviceAddress  string `yaml:"device_address"`
	Username       string `yaml:"username"`
	SSHKeyPath     string `yaml:"ssh_key_path"`
	KeyPassphrase  string `yaml:"ssh_key_passphrase"`
	Password       string `yaml:"password"`
	BasePath       string `yaml:"deployment_base_path"`
	TimeoutSeconds int    `yaml:"timeout"`

	// MaxRetries bounds the reconnect attempts made while establishing an
	// SSH session. See internal/ssh.
	MaxRetries int `yaml:"max_retries"`
}

func defaults() *Config {
	return &Config{
		Username:       appconfig.Config.DefaultUsername,
		BasePath:       appconfig.Config.DefaultBasePath,
		TimeoutSeconds: appconfig.Config.DefaultTimeout,
		MaxRetries:     appconfig.Config.DefaultRetries,
	}
}

// FromURI builds a Config from a target URI. An authority ending in
// .yaml/.yml names a config file; anything else is taken as the device
// address with defaults applied.
func FromURI(targetURI string) (*Config, error) {
	parsed, err := url.Parse(targetURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScheme, err)
	}

	if parsed.Scheme != Scheme {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrInvalidScheme, Scheme, parsed.Scheme)
	}

	identifier := parsed.Host

	if strings.HasSuffix(identifier, ".yaml") || strings.HasSuffix(identifier, ".yml") {
		return FromConfigFile(identifier)
	}

	cfg := defaults()
	cfg.DeviceAddress = identifier
	return cfg, nil
}

// FromConfigFile loads a Config from a YAML file, searching the configured
// config directory, the current directory and finally the expanded absolute
// path.
func FromConfigFile(name string) (*Config, error) {
	candidates := []string{
		filepath.Join(appconfig.Config.ConfigSearchDir, name),
		name,
		expandUser(name),
	}

	var configPath string
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
			break
		}
	}

	if configPath == "" {
		return nil, fmt.Errorf("%w: %s (searched: %s)", ErrConfigFileNotFound, name, strings.Join(candidates, ", "))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read device config %s: %w", configPath, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse device config %s: %w", configPath, err)
	}

	cfg.SSHKeyPath = expandUser(cfg.SSHKeyPath)

	logger.Debug("Loaded device config from %s for %s", configPath, cfg.DeviceAddress)

	return cfg, nil
}

// Validate checks the config and resolves the credential to use. When
// neither a key path nor a password is set, conventional key files under the
// user's home directory are probed; validation fails if none exist. A
// configured key path must exist on disk. Key-based auth wins over password
// when both are present.
func (c *Config) Validate() error {
	if c.DeviceAddress == "" {
		return ErrMissingDeviceAddress
	}

	if err := checkIPv4(c.DeviceAddress); err != nil {
		return err
	}

	if c.SSHKeyPath == "" && c.Password == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			for _, keyFile := range defaultKeyFiles {
				candidate := filepath.Join(homeDir, keyFile)
				if _, err := os.Stat(candidate); err == nil {
					c.SSHKeyPath = candidate
					logger.Info("Using default SSH key %s", candidate)
					break
				}
			}
		}

		if c.SSHKeyPath == "" {
			return ErrNoAuthMethod
		}
	}

	if c.SSHKeyPath != "" {
		keyPath := expandUser(c.SSHKeyPath)
		if _, err := os.Stat(keyPath); err != nil {
			return fmt.Errorf("%w: %s", ErrKeyFileNotFound, c.SSHKeyPath)
		}
		c.SSHKeyPath = keyPath
	}

	if c.TimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}

	return nil
}

// Redacted returns a loggable representation with the password hidden.
func (c *Config) Redacted() string {
	password := c.Password
	if password != "" {
		password = "***hidden***"
	}
	return fmt.Sprintf(
		"Config{device_address: %s, username: %s, ssh_key_path: %s, password: %s, deployment_base_path: %s, timeout: %d, max_retries: %d}",
		c.DeviceAddress, c.Username, c.SSHKeyPath, password, c.BasePath, c.TimeoutSeconds, c.MaxRetries,
	)
}

// checkIPv4 rejects dotted quads with out-of-range octets. Anything that is
// not four numeric parts is assumed to be a hostname and passes.
func checkIPv4(address string) error {
	parts := strings.Split(address, ".")
	if len(parts) != 4 {
		return nil
	}

	for _, part := range parts {
		octet, err := strconv.Atoi(part)
		if err != nil {
			// Hostname with dots, e.g. device.local
			return nil
		}
		if octet < 0 || octet > 255 {
			return fmt.Errorf("invalid IP address: %s", address)
		}
	}

	return nil
}

func expandUser(path string) string {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
