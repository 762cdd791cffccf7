// Package identity derives stable remote-consumer identifiers from
// principal names.
package identity

import "github.com/google/uuid"

// Mapper maps a principal to a deterministic consumer key.
// The key is a name-based UUID, so concurrent service instances converge on
// the same value without coordination. The registry's authority for identity
// remains the consumer username; the key is a correlation aid stored in the
// consumer's custom_id.
type Mapper struct {
	namespace uuid.UUID
}

// NewMapper returns a Mapper using the standard DNS namespace.
func NewMapper() *Mapper {
	return &Mapper{namespace: uuid.NameSpaceDNS}
}

// ConsumerKey returns the derived key for the principal.
// Same principal, same key, on every call and in every process.
func (m *Mapper) ConsumerKey(principal string) string {
	return uuid.NewSHA1(m.namespace, []byte(principal)).String()
}
