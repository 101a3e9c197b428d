package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	title          TEXT     NOT NULL,
	subtitle       TEXT     NOT NULL,
	description    TEXT     NOT NULL,
	price          REAL     NOT NULL,
	specifications TEXT     NOT NULL,
	type           TEXT     NOT NULL,
	profile_image  TEXT     NOT NULL,
	source         TEXT     NOT NULL,
	url            TEXT     NOT NULL,
	checksum       TEXT     NOT NULL,
	created_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS items_type_idx ON items (type);`

const selectItems = `
	SELECT id, title, subtitle, description, price, specifications,
	       type, profile_image, source, url, checksum, created_at
	FROM items`

// Repository keeps items in a single SQLite file. Writes are serialized on
// one connection.
type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(path string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

func (r *Repository) SaveItem(ctx context.Context, record *storage.ItemRecord) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	specs, err := storage.EncodeSpecifications(record.Specifications)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO items
			(title, subtitle, description, price, specifications, type,
			 profile_image, source, url, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Title,
		record.Subtitle,
		record.Description,
		record.Price,
		specs,
		record.Type,
		record.ProfileImage,
		record.Source,
		record.URL,
		record.CheckSum,
		record.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}

	record.ID = id
	return id, nil
}

func (r *Repository) ListTypes(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT type FROM items ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	defer r.closeRows(rows)

	return storage.ScanStrings(rows)
}

func (r *Repository) ListItems(ctx context.Context) ([]*storage.ItemRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, selectItems+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer r.closeRows(rows)

	return storage.ScanItems(rows)
}

func (r *Repository) ListItemsByType(ctx context.Context, itemType string) ([]*storage.ItemRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, selectItems+` WHERE type = ? ORDER BY id`, itemType)
	if err != nil {
		return nil, fmt.Errorf("failed to query items of type %q: %w", itemType, err)
	}
	defer r.closeRows(rows)

	return storage.ScanItems(rows)
}

func (r *Repository) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		r.logger.Error("Failed to close rows", "error", err.Error())
	}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
