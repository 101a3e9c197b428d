package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id             BIGSERIAL PRIMARY KEY,
	title          VARCHAR(256)  NOT NULL,
	subtitle       VARCHAR(256)  NOT NULL,
	description    VARCHAR(2048) NOT NULL,
	price          NUMERIC(18,2) NOT NULL,
	specifications JSONB         NOT NULL,
	type           VARCHAR(128)  NOT NULL,
	profile_image  VARCHAR(1024) NOT NULL,
	source         VARCHAR(16)   NOT NULL,
	url            TEXT          NOT NULL,
	checksum       CHAR(64)      NOT NULL,
	created_at     TIMESTAMPTZ   NOT NULL
);
CREATE INDEX IF NOT EXISTS items_type_idx ON items (type);`

const selectItems = `
	SELECT id, title, subtitle, description, price, specifications::text,
	       type, profile_image, source, url, checksum, created_at
	FROM items`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

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

	query := `
		INSERT INTO items
			(title, subtitle, description, price, specifications, type,
			 profile_image, source, url, checksum, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
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
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
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

	rows, err := r.db.QueryContext(ctx, selectItems+` WHERE type = $1 ORDER BY id`, itemType)
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
