package verifiers

import (
	"fmt"

	"github.com/darmiel/gatekey/internal/core"
)

// userFromClaims builds an AuthUser from a verified claim set.
// The username is taken from preferred_username, then name, then sub —
// matching what upstream identity providers populate in practice.
func userFromClaims(verifierName string, claims map[string]any) (*core.AuthUser, error) {
	username := firstString(claims, "preferred_username", "name", "sub")
	if username == "" {
		return nil, fmt.Errorf("token carries no usable username claim")
	}

	return &core.AuthUser{
		Username:    username,
		Verifier:    verifierName,
		Roles:       stringSlice(claims["roles"]),
		Permissions: stringSlice(claims["permissions"]),
		Claims:      claims,
	}, nil
}

func firstString(claims map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

func stringSlice(raw any) []string {
	switch typed := raw.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
