package core

import "time"

// Consumer is the registry-side account object representing a principal.
// The registry assigns the ID; the username is the principal string and is
// unique across the registry.
type Consumer struct {
	// ID is the registry-assigned, opaque identifier.
	ID string `json:"id"`

	// Username equals the principal the consumer was provisioned for.
	Username string `json:"username"`

	// CustomID is an optional correlation aid (e.g. a derived consumer key).
	// The registry's authority for identity is Username, not this field.
	CustomID string `json:"custom_id,omitempty"`

	// CreatedAt is the registry-reported creation time.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Credential is a named secret record scoped to exactly one consumer.
// Its Name is unique across ALL credentials in the registry and is the key
// the gateway matches against a token's key-identifier claim.
// Name and Secret are immutable once created.
type Credential struct {
	// ID is the registry-assigned identifier of this credential.
	ID string `json:"id"`

	// Name is the globally unique credential key.
	// After conflict resolution this may differ from the requested name.
	Name string `json:"name"`

	// Secret is the signing secret as stored by the registry (base64-encoded).
	// It is write-once: the registry returns it on creation and on listing,
	// but this service never exposes it to callers.
	Secret string `json:"-"`

	// Algorithm is the signing algorithm registered for this credential.
	Algorithm string `json:"algorithm"`

	// ConsumerID is the owning consumer's registry ID.
	ConsumerID string `json:"consumer_id"`

	// CreatedAt is the registry-reported creation time.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// AuthUser is the authenticated identity of the caller.
// It is produced by a Verifier after validating an upstream bearer token.
type AuthUser struct {
	// Username is the unique subject identifier (e.g. preferred_username).
	Username string

	// Verifier is the name of the verifier that validated this user.
	Verifier string

	// Roles and Permissions drive the access policy for on-behalf-of requests.
	Roles       []string
	Permissions []string

	// Claims are the raw claims extracted from the upstream token.
	Claims map[string]any
}

// HasRole reports whether the user carries the given role.
func (u *AuthUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the user carries the given permission.
func (u *AuthUser) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
