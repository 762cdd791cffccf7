package core

import "context"

// Registry is the operation set against the remote consumer/credential
// registry (the gateway's Admin API). Every call is a single round trip and
// classifies its outcome into the error taxonomy in errors.go; upper layers
// branch only on those kinds, never on transport detail.
type Registry interface {
	// CreateConsumer provisions a consumer. Fails with ErrConflict if the
	// username already exists; the caller is expected to fall back to
	// GetConsumer.
	CreateConsumer(ctx context.Context, username, customID string) (*Consumer, error)

	// GetConsumer fetches a consumer by username. ErrNotFound if absent.
	GetConsumer(ctx context.Context, username string) (*Consumer, error)

	// ListConsumers returns all consumers.
	ListConsumers(ctx context.Context) ([]Consumer, error)

	// DeleteConsumer removes a consumer by username. Administrative only;
	// the lifecycle flow never deletes consumers.
	DeleteConsumer(ctx context.Context, username string) error

	// CreateCredential creates a named credential under the consumer.
	// Fails with ErrConflict if the name exists anywhere in the registry,
	// not just for this consumer.
	CreateCredential(ctx context.Context, consumer, name, secret, algorithm string) (*Credential, error)

	// ListCredentials returns the consumer's credentials.
	ListCredentials(ctx context.Context, consumer string) ([]Credential, error)

	// DeleteCredential removes a credential by registry ID.
	// ErrNotFound if the consumer has no such credential.
	DeleteCredential(ctx context.Context, consumer, credentialID string) error
}

// Verifier validates upstream bearer tokens.
// Implementations: OIDC verifier, static-certificate verifier, static (dev) verifier.
type Verifier interface {
	// Name returns the identifier of this verifier (as used in config).
	Name() string

	// Verify takes a raw token string, validates it, and returns the caller.
	Verify(ctx context.Context, token string) (*AuthUser, error)
}
