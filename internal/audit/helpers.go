package audit

import (
	"fmt"

	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/core"
)

// FromConfig builds the auditor selected in config, defaulting to noop.
func FromConfig(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "file":
		return NewFileAuditor(cfg.Path)
	case "memory":
		return NewMemoryAuditor(), nil
	case "", "noop":
		return NewNoopAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Type)
	}
}
