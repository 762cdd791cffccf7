package client

import (
	"context"

	"github.com/darmiel/gatekey/internal/api"
	"github.com/darmiel/gatekey/internal/core"
)

type ConsumerList struct {
	Total     int             `json:"total"`
	Consumers []core.Consumer `json:"consumers"`
}

// ListConsumers retrieves every consumer known to the registry. Admin only.
func (c *Client) ListConsumers(ctx context.Context) (*ConsumerList, string, error) {
	var result ConsumerList
	correlation, err := c.get(ctx, c.url().
		setPath(api.ListConsumersRoute).
		build(), &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}

type RegistryStatus struct {
	Reachable bool   `json:"reachable"`
	Consumers int    `json:"consumers"`
	Error     string `json:"error,omitempty"`
}

// RegistryStatus probes the backing registry through the server. Admin only.
func (c *Client) RegistryStatus(ctx context.Context) (*RegistryStatus, string, error) {
	var result RegistryStatus
	correlation, err := c.get(ctx, c.url().
		setPath(api.RegistryStatusRoute).
		build(), &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}
