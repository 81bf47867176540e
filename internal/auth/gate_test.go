package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vaahan-portal/violation-portal/internal/domain"
)

type fakeSource struct {
	identity *domain.Identity
	token    string
	now      time.Time
	expired  int
	// onSnapshot runs after Snapshot returns, simulating a concurrent login.
	onSnapshot func()
}

func (f *fakeSource) Snapshot() (domain.Identity, string, bool) {
	if f.identity == nil {
		return domain.Identity{}, "", false
	}
	identity, token := *f.identity, f.token
	if f.onSnapshot != nil {
		f.onSnapshot()
	}
	return identity, token, true
}

func (f *fakeSource) ExpireIf(_ context.Context, token string) bool {
	if f.identity == nil || token != f.token {
		return false
	}
	f.expired++
	f.identity = nil
	f.token = ""
	return true
}

func (f *fakeSource) Now() time.Time { return f.now }

type countingRecorder map[string]int

func (c countingRecorder) RecordDecision(decision string) { c[decision]++ }

var gateNow = time.Unix(1_800_000_000, 0)

func sourceAs(role domain.Role, expiresAt time.Time) *fakeSource {
	return &fakeSource{
		identity: &domain.Identity{Subject: "alice", Role: role, ExpiresAt: expiresAt},
		token:    "token-" + string(role),
		now:      gateNow,
	}
}

func TestAuthorize(t *testing.T) {
	future := gateNow.Add(time.Hour)

	cases := []struct {
		name     string
		source   *fakeSource
		required RoleSet
		want     Decision
	}{
		{"anonymous restricted", &fakeSource{now: gateNow}, Roles(domain.RoleAdmin), RedirectToLogin},
		{"anonymous unrestricted", &fakeSource{now: gateNow}, nil, RedirectToLogin},
		{"user into admin view", sourceAs(domain.RoleUser, future), Roles(domain.RoleAdmin), RedirectToHome},
		{"admin into admin view", sourceAs(domain.RoleAdmin, future), Roles(domain.RoleAdmin), Allow},
		{"admin into reviewer view", sourceAs(domain.RoleAdmin, future), Roles(domain.RoleReviewer), RedirectToHome},
		{"reviewer into shared view", sourceAs(domain.RoleReviewer, future), Roles(domain.RoleAdmin, domain.RoleReviewer), Allow},
		{"empty set admits nobody", sourceAs(domain.RoleAdmin, future), Roles(), RedirectToHome},
		{"unrestricted view", sourceAs(domain.RoleUser, future), nil, Allow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gate := NewGate(tc.source, nil, nil)
			if got := gate.Authorize(context.Background(), tc.required); got != tc.want {
				t.Fatalf("Authorize = %s, want %s", got, tc.want)
			}
			if tc.source.expired != 0 {
				t.Fatalf("unexpected Expire call")
			}
		})
	}
}

func TestAuthorizeExpiredIdentityEndsSession(t *testing.T) {
	for _, expiresAt := range []time.Time{gateNow, gateNow.Add(-time.Second)} {
		source := sourceAs(domain.RoleAdmin, expiresAt)
		gate := NewGate(source, nil, nil)

		if got := gate.Authorize(context.Background(), Roles(domain.RoleAdmin)); got != RedirectToLogin {
			t.Fatalf("Authorize = %s, want redirect_to_login", got)
		}
		if source.expired != 1 {
			t.Fatalf("Expire called %d times, want 1", source.expired)
		}
		if got := gate.Authorize(context.Background(), nil); got != RedirectToLogin {
			t.Fatalf("second Authorize = %s, want redirect_to_login", got)
		}
	}
}

func TestAuthorizeExpiryLeavesReplacedSession(t *testing.T) {
	source := sourceAs(domain.RoleUser, gateNow)
	source.onSnapshot = func() {
		source.identity = &domain.Identity{Subject: "alice", Role: domain.RoleAdmin, ExpiresAt: gateNow.Add(time.Hour)}
		source.token = "token-fresh"
		source.onSnapshot = nil
	}
	gate := NewGate(source, nil, nil)

	if got := gate.Authorize(context.Background(), Roles(domain.RoleUser)); got != RedirectToLogin {
		t.Fatalf("Authorize = %s, want redirect_to_login", got)
	}
	if source.expired != 0 || source.token != "token-fresh" {
		t.Fatalf("fresh session ended: expired=%d token=%q", source.expired, source.token)
	}
	if got := gate.Authorize(context.Background(), Roles(domain.RoleAdmin)); got != Allow {
		t.Fatalf("fresh session Authorize = %s, want allow", got)
	}
}

func TestAuthorizeRecordsDecisions(t *testing.T) {
	recorder := countingRecorder{}
	gate := NewGate(sourceAs(domain.RoleUser, gateNow.Add(time.Hour)), nil, recorder)

	gate.Authorize(context.Background(), Roles(domain.RoleUser))
	gate.Authorize(context.Background(), Roles(domain.RoleAdmin))

	if recorder["allow"] != 1 || recorder["redirect_to_home"] != 1 {
		t.Fatalf("recorded = %v", recorder)
	}
}

func TestGateMiddleware(t *testing.T) {
	source := sourceAs(domain.RoleReviewer, gateNow.Add(time.Hour))
	mw := NewGateMiddleware(NewGate(source, nil, nil), Redirects{Login: "/login", Home: "/"})

	app := fiber.New()
	app.Get("/review", mw.RequireRoles(domain.RoleReviewer), func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(identity.Subject)
	})
	app.Get("/admin", mw.RequireRoles(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("admin")
	})
	app.Get("/profile", mw.RequireSession(), func(c *fiber.Ctx) error {
		return c.SendString("profile")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/review", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "alice" {
		t.Fatalf("review: status %d body %q", resp.StatusCode, body)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("admin: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	source.identity = nil
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/profile", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("profile: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}
