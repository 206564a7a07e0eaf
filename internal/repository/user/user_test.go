package user

import (
	"context"
	"io"
	"log"
	"os"
	"testing"

	"craftmarket/internal/domain"
	"craftmarket/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_lines, carts, orders, payments, products, categories, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func storedTokens(ctx context.Context, t *testing.T, pool *pgxpool.Pool, id string) []string {
	t.Helper()
	var tokens []string
	if err := pool.QueryRow(ctx, `SELECT refresh_tokens FROM users WHERE id = $1`, id).Scan(&tokens); err != nil {
		t.Fatalf("read refresh tokens: %v", err)
	}
	return tokens
}

func TestPostgres_AppendRefreshTokenEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, log.New(io.Discard, "", 0))
	created, err := repo.Create(ctx, domain.User{
		Name:         "Test",
		Email:        "tokens@test.local",
		PasswordHash: "x",
		Role:         domain.RoleClient,
		Status:       domain.UserStatusActive,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	for _, token := range []string{"t1", "t2", "t3", "t4"} {
		if err := repo.AppendRefreshToken(ctx, created.ID, token, 3); err != nil {
			t.Fatalf("append %s: %v", token, err)
		}
	}

	// t1 is the oldest session and the only one evicted; the survivors keep
	// their append order.
	got := storedTokens(ctx, t, pool, created.ID)
	want := []string{"t2", "t3", "t4"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPostgres_RotateRefreshTokenSingleUse(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, log.New(io.Discard, "", 0))
	created, err := repo.Create(ctx, domain.User{
		Name:         "Test",
		Email:        "rotate@test.local",
		PasswordHash: "x",
		Role:         domain.RoleClient,
		Status:       domain.UserStatusActive,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, token := range []string{"t1", "t2"} {
		if err := repo.AppendRefreshToken(ctx, created.ID, token, 10); err != nil {
			t.Fatalf("append %s: %v", token, err)
		}
	}

	if err := repo.RotateRefreshToken(ctx, created.ID, "t1", "t1b"); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if err := repo.RotateRefreshToken(ctx, created.ID, "t1", "t1c"); err != domain.ErrNotFound {
		t.Fatalf("replayed rotation should miss, got %v", err)
	}

	got := storedTokens(ctx, t, pool, created.ID)
	if len(got) != 2 || got[0] != "t2" || got[1] != "t1b" {
		t.Fatalf("expected [t2 t1b], got %v", got)
	}
}
