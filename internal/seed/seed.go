package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminName     = "Administrator"
	adminEmail    = "admin@craftmarket.local"
	adminPassword = "Admin12345"
)

type categorySeed struct {
	Name              string
	Description       string
	CustomNameAllowed bool
}

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Tags        []string
}

// Apply inserts basic seed data for manual testing. It is idempotent: the
// admin account and categories upsert on their natural keys, products insert
// only when absent.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	categories := []categorySeed{
		{Name: "mugs", Description: "Hand-thrown ceramic mugs", CustomNameAllowed: true},
		{Name: "prints", Description: "Limited edition art prints"},
		{Name: "textiles", Description: "Woven and embroidered goods", CustomNameAllowed: true},
	}

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		id, err := ensureCategory(ctx, pool, c)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", c.Name, err)
		}
		categoryIDs[c.Name] = id
	}

	products := []productSeed{
		{
			Name:        "Glazed Stoneware Mug",
			Description: "Dishwasher-safe stoneware mug with a speckled glaze",
			PriceCents:  2450,
			Category:    "mugs",
			Tags:        []string{"ceramic", "kitchen"},
		},
		{
			Name:        "Harbor Sunrise Print",
			Description: "A3 giclee print, signed and numbered",
			PriceCents:  3900,
			Category:    "prints",
			Tags:        []string{"art", "wall"},
		},
		{
			Name:        "Wool Throw Blanket",
			Description: "Hand-loomed merino throw, natural dyes",
			PriceCents:  12900,
			Category:    "textiles",
			Tags:        []string{"wool", "home"},
		},
	}

	for _, p := range products {
		if err := insertProduct(ctx, pool, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("insert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO users (name, email, password_hash, role, status)
VALUES ($1, $2, $3, 'admin', 'Active')
ON CONFLICT (lower(email)) DO NOTHING
`
	_, err = pool.Exec(ctx, q, adminName, adminEmail, string(hash))
	return err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, c categorySeed) (string, error) {
	const q = `
INSERT INTO categories (name, description, custom_name_allowed)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, c.Name, c.Description, c.CustomNameAllowed).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func insertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (name, description, price_cents, category_id, tags, status)
SELECT $1, $2, $3, $4, $5, 'Approved'
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
`
	_, err := pool.Exec(ctx, q, p.Name, p.Description, p.PriceCents, categoryID, p.Tags)
	return err
}
