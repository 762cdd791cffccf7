package service

import "time"

type IssueRequest struct {
	// Principal to issue for. The access decision (may the caller act for
	// this principal) has already been made by the time this is called.
	Principal string

	// RequestedName is optional; a default is derived from the principal
	// when empty. The credential may end up with a different name after
	// conflict resolution.
	RequestedName string

	// TTL is optional; zero or anything above the configured ceiling is
	// clamped to the ceiling.
	TTL time.Duration
}

type IssueResponse struct {
	// Token is the signed artifact; it is never stored.
	Token string `json:"token"`

	// TokenName is the credential's finalized name — the token's
	// key-identifier claim equals this exact string.
	TokenName string `json:"token_name"`

	// Renamed flags that the requested name was taken and a new one was
	// synthesized.
	Renamed bool `json:"renamed"`

	// TokenID is the credential's registry ID (used for delete-by-id).
	TokenID string `json:"token_id"`

	ConsumerID  string `json:"consumer_id"`
	ConsumerKey string `json:"consumer_key"`

	ExpiresAt time.Time `json:"expires_at"`
}

// TokenSummary is the non-secret view of a credential. The signing secret
// is write-once at the registry and is never echoed here.
type TokenSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Algorithm  string    `json:"algorithm"`
	ConsumerID string    `json:"consumer_id"`
	CreatedAt  time.Time `json:"created_at,omitempty"`

	// Preview is a truncated, unusable token hint.
	Preview string `json:"preview,omitempty"`
}

type TokenList struct {
	Principal string         `json:"principal"`
	Total     int            `json:"total"`
	Tokens    []TokenSummary `json:"tokens"`
}

type DeleteResult struct {
	DeletedName string `json:"deleted_name"`
	DeletedID   string `json:"deleted_id"`
}
