package audit

import "github.com/darmiel/gatekey/internal/core"

type NoopAuditor struct{}

func NewNoopAuditor() *NoopAuditor {
	return &NoopAuditor{}
}

func (NoopAuditor) Log(core.AuditEntry) error {
	return nil
}

func (NoopAuditor) Close() error {
	return nil
}
