// Package registrytest provides an in-memory core.Registry with the real
// registry's conflict semantics, for use in tests.
package registrytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darmiel/gatekey/internal/core"
)

var _ core.Registry = (*Fake)(nil)

// Fake mimics the Admin API's behavior: usernames are unique, credential
// names are unique across ALL consumers, and creation reports conflicts
// instead of overwriting.
type Fake struct {
	mu        sync.Mutex
	seq       int
	consumers map[string]*core.Consumer            // by username
	creds     map[string]map[string]core.Credential // username -> credential ID -> record

	// CreateCredentialErr, when set, is returned by every CreateCredential
	// call. Used to simulate persistent conflicts or outages.
	CreateCredentialErr error

	// CreateCredentialCalls counts CreateCredential attempts.
	CreateCredentialCalls int
}

func New() *Fake {
	return &Fake{
		consumers: make(map[string]*core.Consumer),
		creds:     make(map[string]map[string]core.Credential),
	}
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%04d", prefix, f.seq)
}

func (f *Fake) CreateConsumer(_ context.Context, username, customID string) (*core.Consumer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.consumers[username]; exists {
		return nil, fmt.Errorf("username %q: %w", username, core.ErrConflict)
	}
	consumer := &core.Consumer{
		ID:        f.nextID("consumer"),
		Username:  username,
		CustomID:  customID,
		CreatedAt: time.Now().UTC(),
	}
	f.consumers[username] = consumer
	f.creds[username] = make(map[string]core.Credential)

	copied := *consumer
	return &copied, nil
}

func (f *Fake) GetConsumer(_ context.Context, username string) (*core.Consumer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	consumer, ok := f.consumers[username]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *consumer
	return &copied, nil
}

func (f *Fake) ListConsumers(_ context.Context) ([]core.Consumer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]core.Consumer, 0, len(f.consumers))
	for _, consumer := range f.consumers {
		out = append(out, *consumer)
	}
	return out, nil
}

func (f *Fake) DeleteConsumer(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.consumers[username]; !ok {
		return core.ErrNotFound
	}
	delete(f.consumers, username)
	delete(f.creds, username)
	return nil
}

func (f *Fake) CreateCredential(_ context.Context, consumer, name, secret, algorithm string) (*core.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCredentialCalls++
	if f.CreateCredentialErr != nil {
		return nil, f.CreateCredentialErr
	}

	owner, ok := f.consumers[consumer]
	if !ok {
		return nil, core.ErrNotFound
	}

	// credential names are globally unique, not per-consumer
	for _, records := range f.creds {
		for _, cred := range records {
			if cred.Name == name {
				return nil, fmt.Errorf("key %q: %w", name, core.ErrConflict)
			}
		}
	}

	cred := core.Credential{
		ID:         f.nextID("jwt"),
		Name:       name,
		Secret:     secret,
		Algorithm:  algorithm,
		ConsumerID: owner.ID,
		CreatedAt:  time.Now().UTC(),
	}
	f.creds[consumer][cred.ID] = cred

	copied := cred
	return &copied, nil
}

func (f *Fake) ListCredentials(_ context.Context, consumer string) ([]core.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, ok := f.creds[consumer]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := make([]core.Credential, 0, len(records))
	for _, cred := range records {
		out = append(out, cred)
	}
	return out, nil
}

func (f *Fake) DeleteCredential(_ context.Context, consumer, credentialID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, ok := f.creds[consumer]
	if !ok {
		return core.ErrNotFound
	}
	if _, ok := records[credentialID]; !ok {
		return core.ErrNotFound
	}
	delete(records, credentialID)
	return nil
}

// HasCredentialNamed reports whether any consumer holds a credential with
// the given name.
func (f *Fake) HasCredentialNamed(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, records := range f.creds {
		for _, cred := range records {
			if cred.Name == name {
				return true
			}
		}
	}
	return false
}

// CredentialNamed returns the credential with the given name, if any.
func (f *Fake) CredentialNamed(name string) (core.Credential, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, records := range f.creds {
		for _, cred := range records {
			if cred.Name == name {
				return cred, true
			}
		}
	}
	return core.Credential{}, false
}
