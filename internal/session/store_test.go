package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vaahan-portal/violation-portal/internal/domain"
	"github.com/vaahan-portal/violation-portal/internal/repository"
)

type brokenKeySpace struct{}

var errBackendDown = errors.New("backend down")

func (brokenKeySpace) Get(context.Context, string) (string, error) { return "", errBackendDown }
func (brokenKeySpace) Set(context.Context, string, string) error   { return errBackendDown }
func (brokenKeySpace) Delete(context.Context, ...string) error      { return errBackendDown }
func (brokenKeySpace) Ping(context.Context) error                   { return errBackendDown }

func TestStoreSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(repository.NewMemoryKeySpace(), nil)

	if _, ok := store.Load(ctx); ok {
		t.Fatal("empty store should load nothing")
	}

	identity := domain.Identity{
		Subject:   "alice",
		Role:      domain.RoleAdmin,
		ExpiresAt: time.Unix(9999999999, 0).UTC(),
		Profile:   domain.Profile{Username: "alice", Email: "alice@example.com"},
	}
	if err := store.Save(ctx, "a.b.c", identity); err != nil {
		t.Fatalf("save: %v", err)
	}

	stored, ok := store.Load(ctx)
	if !ok {
		t.Fatal("expected stored session")
	}
	if stored.Token != "a.b.c" {
		t.Fatalf("token = %q", stored.Token)
	}
	if stored.Identity.Subject != "alice" || stored.Identity.Role != domain.RoleAdmin || stored.Identity.Email != "alice@example.com" {
		t.Fatalf("identity = %+v", stored.Identity)
	}
	if !stored.Identity.ExpiresAt.Equal(identity.ExpiresAt) {
		t.Fatalf("expiresAt = %v", stored.Identity.ExpiresAt)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.Load(ctx); ok {
		t.Fatal("cleared store should load nothing")
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestStoreLoadPartialOrCorrupt(t *testing.T) {
	ctx := context.Background()

	cases := map[string]map[string]string{
		"token only":       {TokenKey: "a.b.c"},
		"identity only":    {UserKey: `{"subject":"alice"}`},
		"corrupt identity": {TokenKey: "a.b.c", UserKey: "{not json"},
		"empty token":      {TokenKey: "", UserKey: `{"subject":"alice"}`},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			keys := repository.NewMemoryKeySpace()
			for k, v := range values {
				if err := keys.Set(ctx, k, v); err != nil {
					t.Fatal(err)
				}
			}
			if _, ok := NewStore(keys, nil).Load(ctx); ok {
				t.Fatal("expected no session")
			}
		})
	}
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := NewStore(brokenKeySpace{}, nil)

	if _, ok := store.Load(ctx); ok {
		t.Fatal("broken store should load nothing")
	}
	if err := store.Save(ctx, "a.b.c", domain.Identity{}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("save err = %v", err)
	}
	if err := store.Clear(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("clear err = %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("ping err = %v", err)
	}
}
