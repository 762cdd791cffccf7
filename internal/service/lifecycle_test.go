package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/gatekey/internal/audit"
	"github.com/darmiel/gatekey/internal/core"
	"github.com/darmiel/gatekey/internal/identity"
	"github.com/darmiel/gatekey/internal/issuance"
	"github.com/darmiel/gatekey/internal/minter"
	"github.com/darmiel/gatekey/internal/registry/registrytest"
)

func newTestService(fake *registrytest.Fake) (*LifecycleService, *audit.MemoryAuditor) {
	mapper := identity.NewMapper()
	issuer := issuance.New(fake, mapper, issuance.DefaultMaxAttempts)
	m := minter.New(minter.DefaultKeyClaim, time.Hour)
	auditor := audit.NewMemoryAuditor()
	return NewLifecycleService(fake, mapper, issuer, m, auditor), auditor
}

func parseUnverified(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	return parsed.Claims.(jwt.MapClaims)
}

func TestIssueForPrincipal(t *testing.T) {
	fake := registrytest.New()
	svc, auditor := newTestService(fake)

	resp, err := svc.IssueForPrincipal(context.Background(), IssueRequest{
		Principal:     "alice",
		RequestedName: "laptop",
		TTL:           30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("IssueForPrincipal: %v", err)
	}

	if resp.TokenName != "laptop" {
		t.Errorf("expected token name 'laptop', got %q", resp.TokenName)
	}
	if resp.Renamed {
		t.Error("expected no rename on first issuance")
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}

	claims := parseUnverified(t, resp.Token)
	if claims["iss"] != "alice" {
		t.Errorf("expected iss 'alice', got %v", claims["iss"])
	}
	if claims["kid"] != "laptop" {
		t.Errorf("expected kid 'laptop', got %v", claims["kid"])
	}

	if !fake.HasCredentialNamed("laptop") {
		t.Error("expected credential registered for alice")
	}

	entries := auditor.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if !entries[0].Success || entries[0].FinalName != "laptop" {
		t.Errorf("unexpected audit entry: %+v", entries[0])
	}
}

func TestIssueForPrincipalDefaultName(t *testing.T) {
	fake := registrytest.New()
	svc, _ := newTestService(fake)

	resp, err := svc.IssueForPrincipal(context.Background(), IssueRequest{Principal: "alice"})
	if err != nil {
		t.Fatalf("IssueForPrincipal: %v", err)
	}

	want := regexp.MustCompile(`^alice_token_\d{8}_\d{6}$`)
	if !want.MatchString(resp.TokenName) {
		t.Errorf("default name %q does not match %s", resp.TokenName, want)
	}
}

func TestIssueForPrincipalRename(t *testing.T) {
	fake := registrytest.New()
	svc, _ := newTestService(fake)
	ctx := context.Background()

	first, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "alice", RequestedName: "laptop"})
	if err != nil {
		t.Fatalf("first issuance: %v", err)
	}
	second, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "alice", RequestedName: "laptop"})
	if err != nil {
		t.Fatalf("second issuance: %v", err)
	}

	if !second.Renamed {
		t.Error("expected second issuance to be renamed")
	}
	want := regexp.MustCompile(`^laptop_\d{6}_[0-9a-f]{8}$`)
	if !want.MatchString(second.TokenName) {
		t.Errorf("renamed credential %q does not match %s", second.TokenName, want)
	}

	// the key claim must reference the FINAL name, never the requested one
	claims := parseUnverified(t, second.Token)
	if claims["kid"] != second.TokenName {
		t.Errorf("kid %v does not match final name %q", claims["kid"], second.TokenName)
	}
	if !fake.HasCredentialNamed(second.TokenName) {
		t.Errorf("renamed credential %q not found in registry", second.TokenName)
	}

	if first.TokenID == second.TokenID {
		t.Error("expected distinct credential IDs")
	}
}

func TestListTokensNoSecrets(t *testing.T) {
	fake := registrytest.New()
	svc, _ := newTestService(fake)
	ctx := context.Background()

	issued, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "alice", RequestedName: "laptop"})
	if err != nil {
		t.Fatalf("issuance: %v", err)
	}

	list, err := svc.ListTokens(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTokens: %v", err)
	}
	if list.Total != 1 || len(list.Tokens) != 1 {
		t.Fatalf("expected exactly one token, got %+v", list)
	}

	got := list.Tokens[0]
	if got.Name != "laptop" || got.ID != issued.TokenID {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.Preview == "" {
		t.Error("expected a preview token")
	}
	if !strings.Contains(got.Preview, "...") {
		t.Errorf("preview %q is not truncated", got.Preview)
	}

	// the preview must not be a usable token, and the stored secret must not
	// appear anywhere in the summary
	cred, ok := fake.CredentialNamed("laptop")
	if !ok {
		t.Fatal("credential not found in registry")
	}
	raw, _ := base64.StdEncoding.DecodeString(cred.Secret)
	for _, leak := range []string{cred.Secret, string(raw)} {
		if strings.Contains(got.Preview, leak) || got.Name == leak || got.ID == leak {
			t.Error("credential secret leaked into token summary")
		}
	}
}

func TestListTokensUnknownPrincipal(t *testing.T) {
	fake := registrytest.New()
	svc, _ := newTestService(fake)

	list, err := svc.ListTokens(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListTokens: %v", err)
	}
	if list.Total != 0 || len(list.Tokens) != 0 {
		t.Errorf("expected empty list for unknown principal, got %+v", list)
	}
}

func TestDeleteByID(t *testing.T) {
	fake := registrytest.New()
	svc, auditor := newTestService(fake)
	ctx := context.Background()

	issued, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "alice", RequestedName: "laptop"})
	if err != nil {
		t.Fatalf("issuance: %v", err)
	}

	if err := svc.DeleteByID(ctx, "alice", issued.TokenID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if fake.HasCredentialNamed("laptop") {
		t.Error("credential still present after delete")
	}

	entries := auditor.Entries()
	last := entries[len(entries)-1]
	if last.Action != "token.delete" || !last.Success {
		t.Errorf("unexpected audit entry: %+v", last)
	}
}

func TestDeleteByIDNotFound(t *testing.T) {
	fake := registrytest.New()
	svc, _ := newTestService(fake)
	ctx := context.Background()

	if _, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "alice", RequestedName: "laptop"}); err != nil {
		t.Fatalf("issuance: %v", err)
	}

	err := svc.DeleteByID(ctx, "alice", "jwt-9999")
	if err == nil {
		t.Fatal("expected error for unknown credential ID")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestDeleteByName(t *testing.T) {
	fake := registrytest.New()
	svc, _ := newTestService(fake)
	ctx := context.Background()

	issued, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "alice", RequestedName: "laptop"})
	if err != nil {
		t.Fatalf("issuance: %v", err)
	}

	result, err := svc.DeleteByName(ctx, "alice", "laptop")
	if err != nil {
		t.Fatalf("DeleteByName: %v", err)
	}
	if result.DeletedID != issued.TokenID || result.DeletedName != "laptop" {
		t.Errorf("unexpected delete result: %+v", result)
	}
	if fake.HasCredentialNamed("laptop") {
		t.Error("credential still present after delete")
	}
}

func TestDeleteByNameScopedToOwnConsumer(t *testing.T) {
	fake := registrytest.New()
	svc, _ := newTestService(fake)
	ctx := context.Background()

	// bob holds "shared"; alice has a consumer but no such credential
	if _, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "bob", RequestedName: "shared"}); err != nil {
		t.Fatalf("bob issuance: %v", err)
	}
	if _, err := svc.IssueForPrincipal(ctx, IssueRequest{Principal: "alice", RequestedName: "laptop"}); err != nil {
		t.Fatalf("alice issuance: %v", err)
	}

	_, err := svc.DeleteByName(ctx, "alice", "shared")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign credential name, got %v", err)
	}
	if !fake.HasCredentialNamed("shared") {
		t.Error("bob's credential must survive alice's delete attempt")
	}
}

func TestRegistryOutageMapsTo503(t *testing.T) {
	fake := registrytest.New()
	fake.CreateCredentialErr = core.ErrUnavailable
	svc, _ := newTestService(fake)

	_, err := svc.IssueForPrincipal(context.Background(), IssueRequest{Principal: "alice", RequestedName: "laptop"})
	if err == nil {
		t.Fatal("expected error during registry outage")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
	if !errors.Is(err, core.ErrUnavailable) {
		t.Error("expected cause to remain in the error chain")
	}
}

func TestNameExhaustionMapsTo409(t *testing.T) {
	fake := registrytest.New()
	fake.CreateCredentialErr = core.ErrConflict
	svc, _ := newTestService(fake)

	_, err := svc.IssueForPrincipal(context.Background(), IssueRequest{Principal: "alice", RequestedName: "laptop"})
	if err == nil {
		t.Fatal("expected error after exhausting rename attempts")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
	if !errors.Is(err, core.ErrNameExhausted) {
		t.Error("expected name exhaustion in the error chain")
	}
}
