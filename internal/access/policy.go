// Package access decides whether an authenticated caller may operate on a
// given principal's credentials.
package access

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/core"
)

const (
	DefaultAdminRole          = "admin"
	DefaultElevatedPermission = "manage_all_consumers"
)

type compiledRule struct {
	name    string
	source  string
	program *vm.Program
}

// Policy grants self-service unconditionally and on-behalf-of access to
// admins, holders of the elevated permission, and callers matching an
// expression rule.
type Policy struct {
	adminRole          string
	elevatedPermission string
	rules              []compiledRule
}

// exprEnv is the environment access rule expressions are compiled against.
type exprEnv struct {
	User      *core.AuthUser `expr:"user"`
	Principal string         `expr:"principal"`
}

// NewPolicy compiles the configured rules. Rules that do not compile to a
// boolean are rejected at startup, not at request time.
func NewPolicy(cfg config.AccessConfig) (*Policy, error) {
	policy := &Policy{
		adminRole:          cfg.AdminRole,
		elevatedPermission: cfg.ElevatedPermission,
	}
	if policy.adminRole == "" {
		policy.adminRole = DefaultAdminRole
	}
	if policy.elevatedPermission == "" {
		policy.elevatedPermission = DefaultElevatedPermission
	}

	for _, rule := range cfg.Rules {
		program, err := expr.Compile(rule.Expr, expr.Env(exprEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling access rule %q: %w", rule.Name, err)
		}
		policy.rules = append(policy.rules, compiledRule{
			name:    rule.Name,
			source:  rule.Expr,
			program: program,
		})
	}

	return policy, nil
}

// AdminRole returns the role that grants administrative access.
func (p *Policy) AdminRole() string {
	return p.adminRole
}

// Decision explains an access outcome for audit logs.
type Decision struct {
	Allowed bool
	Reason  string
}

// Check decides whether user may operate on principal's credentials.
func (p *Policy) Check(user *core.AuthUser, principal string) Decision {
	if user.Username == principal {
		return Decision{Allowed: true, Reason: "self-service"}
	}
	if user.HasRole(p.adminRole) {
		return Decision{Allowed: true, Reason: "role " + p.adminRole}
	}
	if user.HasPermission(p.elevatedPermission) {
		return Decision{Allowed: true, Reason: "permission " + p.elevatedPermission}
	}

	env := exprEnv{User: user, Principal: principal}
	for _, rule := range p.rules {
		out, err := expr.Run(rule.program, env)
		if err != nil {
			// a broken rule must never grant access
			continue
		}
		if allowed, ok := out.(bool); ok && allowed {
			return Decision{Allowed: true, Reason: "rule " + rule.name}
		}
	}

	return Decision{Allowed: false, Reason: "not authorized for principal " + principal}
}
