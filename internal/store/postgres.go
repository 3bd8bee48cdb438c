// Package store reads the upstream product database. It is read-mostly: the
// catalog service never writes product rows, only the migration scaffolding
// for local development does.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gadgetph/phone-catalog/internal/catalog"
)

const defaultPoolSize = 10

// PostgresSource implements catalog.Source against pgxpool (connection-pooled
// PostgreSQL).
//
// TODO(test): PostgresSource methods require live Postgres, tested via integration tests.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a new PostgresSource with connection pooling.
func NewPostgresSource(ctx context.Context, connString string, poolSize int) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	cfg.MaxConns = int32(poolSize)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresSource{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Count returns the number of published products.
func (s *PostgresSource) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, queryCountProducts).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return total, nil
}

// List returns published products in stable id order. Terms, tags, and
// attributes are loaded in bulk for the page; a product whose relations are
// missing still appears, with empty slices.
func (s *PostgresSource) List(ctx context.Context, offset, limit int) ([]catalog.RawProduct, error) {
	rows, err := s.pool.Query(ctx, queryListProducts, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []catalog.RawProduct
	index := make(map[string]int)

	for rows.Next() {
		var p catalog.RawProduct
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Type,
			&p.Price, &p.RegularPrice,
			&p.ExternalURL, &p.ProductURLMeta, &p.Permalink, &p.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	if err := s.loadTerms(ctx, ids, index, products); err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, ids, index, products); err != nil {
		return nil, err
	}
	if err := s.loadAttributes(ctx, ids, index, products); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *PostgresSource) loadTerms(
	ctx context.Context,
	ids []string,
	index map[string]int,
	products []catalog.RawProduct,
) error {
	rows, err := s.pool.Query(ctx, queryProductTerms, ids)
	if err != nil {
		return fmt.Errorf("listing product terms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var term catalog.Term
		if err := rows.Scan(&productID, &term.Slug, &term.Name); err != nil {
			return fmt.Errorf("scanning term row: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Terms = append(products[i].Terms, term)
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadTags(
	ctx context.Context,
	ids []string,
	index map[string]int,
	products []catalog.RawProduct,
) error {
	rows, err := s.pool.Query(ctx, queryProductTags, ids)
	if err != nil {
		return fmt.Errorf("listing product tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID, tag string
		if err := rows.Scan(&productID, &tag); err != nil {
			return fmt.Errorf("scanning tag row: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Tags = append(products[i].Tags, tag)
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadAttributes(
	ctx context.Context,
	ids []string,
	index map[string]int,
	products []catalog.RawProduct,
) error {
	rows, err := s.pool.Query(ctx, queryProductAttributes, ids)
	if err != nil {
		return fmt.Errorf("listing product attributes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var attr catalog.Attribute
		if err := rows.Scan(&productID, &attr.Name, &attr.Value); err != nil {
			return fmt.Errorf("scanning attribute row: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Attributes = append(products[i].Attributes, attr)
		}
	}
	return rows.Err()
}

// SeedProducts inserts products with their relations, used by local
// development tooling and integration tests.
func (s *PostgresSource) SeedProducts(ctx context.Context, products []catalog.RawProduct) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for i := range products {
		p := &products[i]
		args := pgx.NamedArgs{
			"id":               p.ID,
			"title":            p.Title,
			"type":             p.Type,
			"price":            p.Price,
			"regular_price":    p.RegularPrice,
			"external_url":     p.ExternalURL,
			"product_url_meta": p.ProductURLMeta,
			"permalink":        p.Permalink,
			"image_url":        p.ImageURL,
		}
		if _, err := tx.Exec(ctx, queryInsertProduct, args); err != nil {
			return fmt.Errorf("inserting product %s: %w", p.ID, err)
		}

		for pos, term := range p.Terms {
			if _, err := tx.Exec(ctx, queryInsertTerm, p.ID, pos, term.Slug, term.Name); err != nil {
				return fmt.Errorf("inserting term for %s: %w", p.ID, err)
			}
		}
		for _, tag := range p.Tags {
			if _, err := tx.Exec(ctx, queryInsertTag, p.ID, tag); err != nil {
				return fmt.Errorf("inserting tag for %s: %w", p.ID, err)
			}
		}
		for _, attr := range p.Attributes {
			if _, err := tx.Exec(ctx, queryInsertAttribute, p.ID, attr.Name, attr.Value); err != nil {
				return fmt.Errorf("inserting attribute for %s: %w", p.ID, err)
			}
		}
	}

	return tx.Commit(ctx)
}
