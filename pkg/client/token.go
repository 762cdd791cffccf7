package client

import (
	"context"

	"github.com/darmiel/gatekey/internal/api"
	"github.com/darmiel/gatekey/internal/service"
)

// IssueTokenOptions contains optional parameters for issuing a token.
type IssueTokenOptions struct {
	// Principal to issue for. Leave empty to issue for yourself; acting on
	// another principal requires admin rights or a matching access rule.
	Principal string

	// Name requests a credential name. Check the response's TokenName, the
	// server may have renamed the credential on a conflict.
	Name string

	// TTL is a duration string like "24h". The server clamps it to its
	// configured ceiling.
	TTL string
}

// IssueToken requests a new signed token from the server.
func (c *Client) IssueToken(ctx context.Context, opts IssueTokenOptions) (*service.IssueResponse, string, error) {
	payload := api.IssuePayload{
		Principal: opts.Principal,
		Name:      opts.Name,
		TTL:       opts.TTL,
	}

	var result service.IssueResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.IssueTokenRoute).
		build(), payload, &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}

// ListTokens retrieves the non-secret token summaries for a principal.
// An empty principal lists the caller's own tokens.
func (c *Client) ListTokens(ctx context.Context, principal string) (*service.TokenList, string, error) {
	ub := c.url().setPath(api.ListTokensRoute)
	if principal != "" {
		ub = ub.addQueryParam("principal", principal)
	}

	var result service.TokenList
	correlation, err := c.get(ctx, ub.build(), &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}

// DeleteToken deletes a token by its registry ID.
func (c *Client) DeleteToken(ctx context.Context, principal, tokenID string) (string, error) {
	ub := c.url().
		setPath(api.DeleteTokenRoute).
		setPathParam("id", tokenID)
	if principal != "" {
		ub = ub.addQueryParam("principal", principal)
	}
	return c.delete(ctx, ub.build(), nil)
}

// DeleteTokenByName deletes a token by its credential name.
func (c *Client) DeleteTokenByName(ctx context.Context, principal, name string) (*service.DeleteResult, string, error) {
	ub := c.url().
		setPath(api.DeleteTokenByNameRoute).
		setPathParam("name", name)
	if principal != "" {
		ub = ub.addQueryParam("principal", principal)
	}

	var result service.DeleteResult
	correlation, err := c.delete(ctx, ub.build(), &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}
