// Package sqlstore keeps placements in a normalized one-row-per-result SQL
// table. SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/storage"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store implements storage.PlacementRepository over database/sql.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

var _ storage.PlacementRepository = (*Store)(nil)

// Open connects to the database and creates the results table if missing.
// driver is "sqlite" or "postgres".
func Open(ctx context.Context, driver, dsn string) (storage.PlacementRepository, error) {
	s, err := open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func open(ctx context.Context, driver, dsn string) (*Store, error) {
	var sqlDriver string
	switch driver {
	case DriverSQLite, "sqlite3":
		driver, sqlDriver = DriverSQLite, "sqlite3"
	case DriverPostgres:
		sqlDriver = "postgres"
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// one connection so in-memory databases are shared and writes serialize
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:     db,
		driver: driver,
		logger: slog.Default().With("component", "sqlstore", "driver", driver),
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	idType := "INTEGER"
	if s.driver == DriverPostgres {
		idType = "BIGINT"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS product_search_results (
			product_id   ` + idType + ` NOT NULL,
			rank         INTEGER NOT NULL,
			store_name   TEXT NOT NULL,
			url          TEXT NOT NULL DEFAULT '',
			product_name TEXT NOT NULL DEFAULT '',
			price        TEXT NOT NULL DEFAULT '',
			rating       DOUBLE PRECISION,
			thumbnail    TEXT NOT NULL DEFAULT '',
			tier         TEXT NOT NULL,
			score        DOUBLE PRECISION NOT NULL DEFAULT 0,
			reason       TEXT NOT NULL DEFAULT '',
			provenance   TEXT NOT NULL DEFAULT '',
			created_at   ` + s.timestampType() + ` NOT NULL,
			PRIMARY KEY (product_id, rank)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) timestampType() string {
	if s.driver == DriverPostgres {
		return "TIMESTAMPTZ"
	}
	return "TIMESTAMP"
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlacements replaces the rows for the product in one transaction.
func (s *Store) SavePlacements(ctx context.Context, productID core.ID, places []core.Placement) error {
	for i := range places {
		if err := core.ValidatePlacement(&places[i]); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_search_results WHERE product_id = $1`, int64(productID)); err != nil {
		return fmt.Errorf("delete placements: %w", err)
	}

	for _, p := range places {
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		var rating sql.NullFloat64
		if p.Rating != nil {
			rating = sql.NullFloat64{Float64: *p.Rating, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO product_search_results
			(product_id, rank, store_name, url, product_name, price, rating, thumbnail, tier, score, reason, provenance, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			int64(productID), p.Rank, p.StoreName, p.URL, p.ProductName, p.Price, rating,
			p.Thumbnail, p.Tier.String(), p.Score, p.Reason, string(p.Provenance), createdAt.UTC())
		if err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("placements saved", "product", productID, "count", len(places))
	return nil
}

// GetPlacements returns the rows for the product ordered by rank.
func (s *Store) GetPlacements(ctx context.Context, productID core.ID) ([]core.Placement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		rank, store_name, url, product_name, price, rating, thumbnail, tier, score, reason, provenance, created_at
		FROM product_search_results WHERE product_id = $1 ORDER BY rank`, int64(productID))
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	places := []core.Placement{}
	for rows.Next() {
		var (
			p          core.Placement
			rating     sql.NullFloat64
			tier       string
			provenance string
		)
		if err := rows.Scan(&p.Rank, &p.StoreName, &p.URL, &p.ProductName, &p.Price, &rating,
			&p.Thumbnail, &tier, &p.Score, &p.Reason, &provenance, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		if p.Tier, err = core.ParseTier(tier); err != nil {
			return nil, err
		}
		if rating.Valid {
			r := rating.Float64
			p.Rating = &r
		}
		p.ProductID = productID
		p.Provenance = core.Provenance(provenance)
		p.CreatedAt = p.CreatedAt.UTC()
		places = append(places, p)
	}
	return places, rows.Err()
}
