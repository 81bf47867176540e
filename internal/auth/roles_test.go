package auth

import (
	"context"
	"testing"
	"time"

	"github.com/vaahan-portal/violation-portal/internal/domain"
)

func claimsWith(authorities ...Authority) *Claims {
	return &Claims{Authorities: authorities}
}

func TestResolveFirstMatch(t *testing.T) {
	resolver := NewRoleResolver()

	cases := []struct {
		name   string
		claims *Claims
		want   domain.Role
	}{
		{"nil claims", nil, domain.RoleUser},
		{"no authorities", claimsWith(), domain.RoleUser},
		{"admin", claimsWith("ROLE_ADMIN"), domain.RoleAdmin},
		{"reviewer", claimsWith("ROLE_REVIEWER"), domain.RoleReviewer},
		{"user", claimsWith("ROLE_USER"), domain.RoleUser},
		{"non-role entries skipped", claimsWith("report:write", "ROLE_ADMIN"), domain.RoleAdmin},
		{"no prefixed entry", claimsWith("ADMIN", "report:write"), domain.RoleUser},
		{"first prefixed wins", claimsWith("ROLE_REVIEWER", "ROLE_ADMIN"), domain.RoleReviewer},
		{"unknown role alone", claimsWith("ROLE_SUPERUSER"), domain.RoleUser},
		{"unknown first role falls back", claimsWith("ROLE_SUPERUSER", "ROLE_ADMIN"), domain.RoleUser},
		{"case sensitive", claimsWith("ROLE_admin"), domain.RoleUser},
		{"empty authority", claimsWith(""), domain.RoleUser},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolver.Resolve(tc.claims); got != tc.want {
				t.Fatalf("Resolve = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestUnknownRoleGetsUserAccessOnly(t *testing.T) {
	role := NewRoleResolver().Resolve(claimsWith("ROLE_SUPERUSER"))
	gate := NewGate(sourceAs(role, gateNow.Add(time.Hour)), nil, nil)
	ctx := context.Background()

	cases := []struct {
		required RoleSet
		want     Decision
	}{
		{Roles(domain.RoleUser), Allow},
		{Roles(domain.RoleReviewer), RedirectToHome},
		{Roles(domain.RoleAdmin), RedirectToHome},
		{nil, Allow},
	}
	for _, tc := range cases {
		if got := gate.Authorize(ctx, tc.required); got != tc.want {
			t.Fatalf("Authorize(%v) = %s, want %s", tc.required, got, tc.want)
		}
	}
}

func TestResolveAdminAuthorityAlwaysAdmin(t *testing.T) {
	resolver := NewRoleResolver()
	for _, authorities := range [][]Authority{
		{"ROLE_ADMIN"},
		{"ROLE_ADMIN", "ROLE_USER"},
		{"scope:read", "ROLE_ADMIN"},
	} {
		if got := resolver.Resolve(claimsWith(authorities...)); got != domain.RoleAdmin {
			t.Fatalf("Resolve(%v) = %s, want ADMIN", authorities, got)
		}
	}
}

func TestResolveWithPrecedence(t *testing.T) {
	resolver := NewRoleResolver(ParsePrecedence("admin, REVIEWER,bogus,USER")...)

	cases := []struct {
		name   string
		claims *Claims
		want   domain.Role
	}{
		{"highest ranked wins", claimsWith("ROLE_REVIEWER", "ROLE_ADMIN"), domain.RoleAdmin},
		{"reviewer over user", claimsWith("ROLE_USER", "ROLE_REVIEWER"), domain.RoleReviewer},
		{"unknown ignored", claimsWith("ROLE_SUPERUSER", "ROLE_REVIEWER"), domain.RoleReviewer},
		{"none matched", claimsWith("scope:read"), domain.RoleUser},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolver.Resolve(tc.claims); got != tc.want {
				t.Fatalf("Resolve = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResolvePrecedenceExcludesUnlistedRoles(t *testing.T) {
	resolver := NewRoleResolver(domain.RoleReviewer)
	if got := resolver.Resolve(claimsWith("ROLE_ADMIN")); got != domain.RoleUser {
		t.Fatalf("Resolve = %s, want USER", got)
	}
}

func TestParsePrecedence(t *testing.T) {
	got := ParsePrecedence("ADMIN,,reviewer,nope")
	if len(got) != 2 || got[0] != domain.RoleAdmin || got[1] != domain.RoleReviewer {
		t.Fatalf("ParsePrecedence = %v", got)
	}
	if got := ParsePrecedence(""); len(got) != 0 {
		t.Fatalf("ParsePrecedence(\"\") = %v", got)
	}
}
