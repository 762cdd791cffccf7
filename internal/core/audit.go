package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "token.issue", "token.delete")
	Action string `json:"action"`

	// Caller identifies who made the request
	Caller *AuthUser `json:"caller,omitempty"`

	// Principal is the principal the operation acted on.
	// It differs from the caller's username for on-behalf-of requests.
	Principal string `json:"principal,omitempty"`

	// RequestedName and FinalName track credential naming.
	// Renamed flags that conflict resolution changed the name.
	RequestedName string `json:"requested_name,omitempty"`
	FinalName     string `json:"final_name,omitempty"`
	Renamed       bool   `json:"renamed,omitempty"`

	// CredentialID is the registry ID of the affected credential.
	CredentialID string `json:"credential_id,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
