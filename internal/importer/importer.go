package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"craftmarket/internal/domain"
)

type ProductWriter interface {
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryResolver interface {
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// CSVImporter reads catalog CSV exports and inserts approved products,
// creating categories on first sight.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryResolver

	categoryIDs map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryResolver) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		products:    products,
		categories:  categories,
		categoryIDs: make(map[string]string),
	}
}

type csvRow struct {
	Name        string
	Description string
	Cents       int64
	Category    string
	Tags        []string
	Images      []string
}

// Run parses CSV rows and creates one product per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.Category == "" || row.Cents <= 0 {
		return fmt.Errorf("invalid product row (missing required fields) for %q", row.Name)
	}

	categoryID, err := i.resolveCategory(ctx, row.Category)
	if err != nil {
		return fmt.Errorf("resolve category %q: %w", row.Category, err)
	}

	price := row.Cents
	p := domain.Product{
		Name:        row.Name,
		Description: row.Description,
		PriceCents:  &price,
		CategoryID:  categoryID,
		Tags:        row.Tags,
		Images:      row.Images,
		Status:      domain.ProductApproved,
	}

	if _, err := i.products.Create(ctx, p); err != nil {
		return fmt.Errorf("create product %q: %w", row.Name, err)
	}
	return nil
}

func (i *CSVImporter) resolveCategory(ctx context.Context, name string) (string, error) {
	if id, ok := i.categoryIDs[name]; ok {
		return id, nil
	}

	c, err := i.categories.GetByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		c, err = i.categories.Create(ctx, domain.Category{Name: name, IsActive: true})
	}
	if err != nil {
		return "", err
	}

	i.categoryIDs[name] = c.ID
	return c.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	name := pick(record, index, "name")
	if name == "" {
		return nil
	}

	var cents int64
	if centStr := pick(record, index, "priceCents"); centStr != "" {
		cents, _ = strconv.ParseInt(centStr, 10, 64)
	}

	return &csvRow{
		Name:        name,
		Description: pick(record, index, "description"),
		Cents:       cents,
		Category:    pick(record, index, "category"),
		Tags:        splitList(pick(record, index, "tags")),
		Images:      splitList(pick(record, index, "images")),
	}
}

// splitList parses pipe-separated multi-value cells.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
