package access

import (
	"testing"

	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/core"
)

func TestPolicyCheck(t *testing.T) {
	policy, err := NewPolicy(config.AccessConfig{
		Rules: []config.AccessRule{
			{Name: "service accounts", Expr: `hasPrefix(user.Username, "svc-")`},
		},
	})
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}

	tests := []struct {
		name      string
		user      core.AuthUser
		principal string
		want      bool
	}{
		{
			name:      "self-service always allowed",
			user:      core.AuthUser{Username: "alice"},
			principal: "alice",
			want:      true,
		},
		{
			name:      "plain user cannot act for others",
			user:      core.AuthUser{Username: "alice"},
			principal: "bob",
			want:      false,
		},
		{
			name:      "admin role acts for anyone",
			user:      core.AuthUser{Username: "root", Roles: []string{"admin"}},
			principal: "bob",
			want:      true,
		},
		{
			name:      "elevated permission acts for anyone",
			user:      core.AuthUser{Username: "ops", Permissions: []string{"manage_all_consumers"}},
			principal: "bob",
			want:      true,
		},
		{
			name:      "expression rule grants",
			user:      core.AuthUser{Username: "svc-deployer"},
			principal: "bob",
			want:      true,
		},
		{
			name:      "expression rule does not match",
			user:      core.AuthUser{Username: "deployer"},
			principal: "bob",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Check(&tt.user, tt.principal)
			if decision.Allowed != tt.want {
				t.Errorf("Check() = %+v, want allowed=%v", decision, tt.want)
			}
			if decision.Reason == "" {
				t.Error("Check() returned empty reason")
			}
		})
	}
}

func TestNewPolicyRejectsNonBooleanRule(t *testing.T) {
	_, err := NewPolicy(config.AccessConfig{
		Rules: []config.AccessRule{
			{Name: "broken", Expr: `user.Username + "x"`},
		},
	})
	if err == nil {
		t.Fatal("NewPolicy() accepted a non-boolean rule")
	}
}

func TestPolicyCustomAdminRole(t *testing.T) {
	policy, err := NewPolicy(config.AccessConfig{AdminRole: "superuser"})
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}

	admin := core.AuthUser{Username: "root", Roles: []string{"admin"}}
	if policy.Check(&admin, "bob").Allowed {
		t.Error("default admin role still honored after override")
	}

	super := core.AuthUser{Username: "root", Roles: []string{"superuser"}}
	if !policy.Check(&super, "bob").Allowed {
		t.Error("configured admin role not honored")
	}
}
