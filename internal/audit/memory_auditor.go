package audit

import (
	"sync"

	"github.com/darmiel/gatekey/internal/core"
)

// MemoryAuditor keeps entries in memory. Used in tests and for the
// short-lived CLI flows.
type MemoryAuditor struct {
	mu      sync.Mutex
	entries []core.AuditEntry
}

func NewMemoryAuditor() *MemoryAuditor {
	return &MemoryAuditor{}
}

func (m *MemoryAuditor) Log(entry core.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MemoryAuditor) Entries() []core.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *MemoryAuditor) Close() error {
	return nil
}
