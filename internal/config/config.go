package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Registry    RegistryConfig   `yaml:"registry"`
	Token       TokenConfig      `yaml:"token"`
	Credentials CredentialConfig `yaml:"credentials"`
	Verifiers   []VerifierConfig `yaml:"verifiers"`
	Access      AccessConfig     `yaml:"access"`
	Audit       AuditConfig      `yaml:"audit"`
}

// RegistryConfig points at the gateway's Admin API.
type RegistryConfig struct {
	// AdminURL is the base URL of the Admin API, e.g. "http://kong:8001".
	AdminURL string `yaml:"admin_url"`

	// Timeout bounds every single round trip, not whole operations.
	Timeout time.Duration `yaml:"timeout"`
}

// TokenConfig controls minting.
type TokenConfig struct {
	// MaxTTL is the expiration ceiling; longer requests are clamped.
	MaxTTL time.Duration `yaml:"max_ttl"`

	// KeyClaim is the claim name the gateway matches against credential
	// names. Defaults to "kid".
	KeyClaim string `yaml:"key_claim"`
}

// CredentialConfig controls issuance.
type CredentialConfig struct {
	// MaxAttempts bounds creation retries on name conflicts.
	MaxAttempts int `yaml:"max_attempts"`
}

// VerifierConfig holds configuration for an upstream identity verifier.
type VerifierConfig struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`    // e.g. "oidc", "cert", "static"
	Config map[string]any `yaml:",inline"` // capture remaining fields
}

// AccessRule allows issuing credentials for OTHER principals when its
// expression evaluates to true for the caller.
type AccessRule struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// AccessConfig controls who may act on behalf of other principals.
// Self-service is always allowed.
type AccessConfig struct {
	// AdminRole grants unrestricted access; defaults to "admin".
	AdminRole string `yaml:"admin_role"`

	// ElevatedPermission grants unrestricted access via a permission claim;
	// defaults to "manage_all_consumers".
	ElevatedPermission string `yaml:"elevated_permission"`

	// Rules are additional expression-based grants.
	Rules []AccessRule `yaml:"rules"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g. "file", "memory"
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Registry.AdminURL == "" {
		return fmt.Errorf("registry.admin_url is required")
	}
	if c.Credentials.MaxAttempts < 0 {
		return fmt.Errorf("credentials.max_attempts must not be negative")
	}
	if c.Token.MaxTTL < 0 {
		return fmt.Errorf("token.max_ttl must not be negative")
	}

	if len(c.Verifiers) == 0 {
		return fmt.Errorf("at least one verifier is required")
	}
	seen := make(map[string]struct{})
	for idx, v := range c.Verifiers {
		if v.Name == "" {
			return fmt.Errorf("verifier at index %d has empty name", idx)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("duplicate verifier name %q", v.Name)
		}
		seen[v.Name] = struct{}{}
	}

	for idx, rule := range c.Access.Rules {
		if rule.Expr == "" {
			return fmt.Errorf("access rule at index %d (%q) has empty expr", idx, rule.Name)
		}
	}

	if c.Audit.Enabled && c.Audit.Type == "file" && c.Audit.Path == "" {
		return fmt.Errorf("audit.path is required for file auditing")
	}
	return nil
}
