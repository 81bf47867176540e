package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/config"
)

func TestOpenKeySpaceFileAndMemory(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	cases := []config.SessionConfig{
		{Store: config.StoreMemory},
		{Store: config.StoreFile, FilePath: filepath.Join(t.TempDir(), "session.json")},
		{Store: config.StoreFile, FilePath: filepath.Join(t.TempDir(), "sealed.json"), SealSecret: "s3cret"},
	}
	for _, sc := range cases {
		keys, closeKeys, err := OpenKeySpace(ctx, config.Config{Session: sc}, logger)
		if err != nil {
			t.Fatalf("%s: open: %v", sc.Store, err)
		}
		if err := keys.Set(ctx, "jwtToken", "a.b.c"); err != nil {
			t.Fatalf("%s: set: %v", sc.Store, err)
		}
		if got, err := keys.Get(ctx, "jwtToken"); err != nil || got != "a.b.c" {
			t.Fatalf("%s: get = %q, %v", sc.Store, got, err)
		}
		closeKeys()
	}
}

func TestOpenKeySpacePostgresRequiresDSN(t *testing.T) {
	cfg := config.Config{Session: config.SessionConfig{Store: config.StorePostgres}}
	if _, _, err := OpenKeySpace(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error without POSTGRES_DSN")
	}
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, DefaultMigrationsDir, zap.NewNop()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
}
