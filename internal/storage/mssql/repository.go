package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/storage"
)

const schema = `
IF OBJECT_ID(N'dbo.TblItems', N'U') IS NULL
BEGIN
	CREATE TABLE dbo.TblItems (
		[ID]             BIGINT IDENTITY(1,1) PRIMARY KEY,
		[Title]          NVARCHAR(256)  NOT NULL,
		[Subtitle]       NVARCHAR(256)  NOT NULL,
		[Description]    NVARCHAR(2048) NOT NULL,
		[Price]          DECIMAL(18,2)  NOT NULL,
		[Specifications] NVARCHAR(MAX)  NOT NULL,
		[Type]           NVARCHAR(128)  NOT NULL,
		[ProfileImage]   NVARCHAR(1024) NOT NULL,
		[Source]         NVARCHAR(16)   NOT NULL,
		[URL]            NVARCHAR(2048) NOT NULL,
		[CheckSum]       CHAR(64)       NOT NULL,
		[CreatedAt]      DATETIME2      NOT NULL
	);
	CREATE INDEX IX_TblItems_Type ON dbo.TblItems ([Type]);
END`

const selectItems = `
	SELECT [ID], [Title], [Subtitle], [Description], [Price], [Specifications],
	       [Type], [ProfileImage], [Source], [URL], [CheckSum], [CreatedAt]
	FROM dbo.TblItems`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
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

	row := record.UTF16Bounded()

	specs, err := storage.EncodeSpecifications(row.Specifications)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO dbo.TblItems
			([Title], [Subtitle], [Description], [Price], [Specifications], [Type],
			 [ProfileImage], [Source], [URL], [CheckSum], [CreatedAt])
		OUTPUT INSERTED.[ID]
		VALUES
			(@Title, @Subtitle, @Description, @Price, @Specifications, @Type,
			 @ProfileImage, @Source, @URL, @CheckSum, @CreatedAt);
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var id int64
	err = stmt.QueryRowContext(ctx,
		sql.Named("Title", row.Title),
		sql.Named("Subtitle", row.Subtitle),
		sql.Named("Description", row.Description),
		sql.Named("Price", row.Price),
		sql.Named("Specifications", specs),
		sql.Named("Type", row.Type),
		sql.Named("ProfileImage", row.ProfileImage),
		sql.Named("Source", row.Source),
		sql.Named("URL", row.URL),
		sql.Named("CheckSum", row.CheckSum),
		sql.Named("CreatedAt", row.CreatedAt),
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

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT [Type] FROM dbo.TblItems ORDER BY [Type]`)
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	defer r.closeRows(rows)

	return storage.ScanStrings(rows)
}

func (r *Repository) ListItems(ctx context.Context) ([]*storage.ItemRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, selectItems+` ORDER BY [ID]`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer r.closeRows(rows)

	return storage.ScanItems(rows)
}

func (r *Repository) ListItemsByType(ctx context.Context, itemType string) ([]*storage.ItemRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, selectItems+` WHERE [Type] = @Type ORDER BY [ID]`, sql.Named("Type", itemType))
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
