package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
registry:
  admin_url: http://localhost:8001
  timeout: 5s

token:
  max_ttl: 8760h
  key_claim: kid

credentials:
  max_attempts: 3

verifiers:
  - name: corp-idp
    type: oidc
    issuer_url: https://idp.example.com
    client_id: gatekey
  - name: dev
    type: static
    token_map:
      dev-token:
        username: dev

access:
  admin_role: admin
  rules:
    - name: service accounts
      expr: hasPrefix(user.Username, "svc-")

audit:
  enabled: true
  type: file
  path: /var/log/gatekey/audit.log
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Registry.AdminURL != "http://localhost:8001" {
		t.Errorf("AdminURL = %q", cfg.Registry.AdminURL)
	}
	if cfg.Registry.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Registry.Timeout)
	}
	if cfg.Token.MaxTTL != 8760*time.Hour {
		t.Errorf("MaxTTL = %v, want 8760h", cfg.Token.MaxTTL)
	}
	if cfg.Credentials.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d", cfg.Credentials.MaxAttempts)
	}
	if len(cfg.Verifiers) != 2 || cfg.Verifiers[0].Type != "oidc" {
		t.Errorf("Verifiers = %+v", cfg.Verifiers)
	}
	if cfg.Verifiers[0].Config["issuer_url"] != "https://idp.example.com" {
		t.Errorf("inline verifier config not captured: %+v", cfg.Verifiers[0].Config)
	}
	if len(cfg.Access.Rules) != 1 {
		t.Errorf("Access.Rules = %+v", cfg.Access.Rules)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "missing admin url",
			mutate:  func(c *Config) { c.Registry.AdminURL = "" },
			wantErr: "admin_url",
		},
		{
			name:    "no verifiers",
			mutate:  func(c *Config) { c.Verifiers = nil },
			wantErr: "verifier",
		},
		{
			name:    "duplicate verifier name",
			mutate:  func(c *Config) { c.Verifiers[1].Name = c.Verifiers[0].Name },
			wantErr: "duplicate",
		},
		{
			name:    "empty access rule expr",
			mutate:  func(c *Config) { c.Access.Rules[0].Expr = "" },
			wantErr: "expr",
		},
		{
			name:    "file audit without path",
			mutate:  func(c *Config) { c.Audit.Path = "" },
			wantErr: "audit.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, sampleConfig))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
