package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/princekumarofficial/media-service/internal/config"
	"github.com/princekumarofficial/media-service/internal/storage"
	"github.com/princekumarofficial/media-service/internal/types"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	pg := &Postgres{Db: db}
	if err := pg.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS media (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			file_name TEXT NOT NULL,
			collection_name TEXT NOT NULL DEFAULT 'default',
			disk TEXT NOT NULL,
			mime_type TEXT NOT NULL DEFAULT '',
			size BIGINT NOT NULL DEFAULT 0,
			custom_properties JSONB NOT NULL DEFAULT '{}',
			order_column INTEGER,
			curator_id TEXT,
			curator_type TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_media_curator
		ON media (collection_name, curator_type, curator_id);
		`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) SaveMedia(ctx context.Context, record *types.MediaRecord, replace *storage.SingleFileSlot, write storage.WriteFunc) ([]types.MediaRecord, error) {
	tx, err := p.Db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var replaced []types.MediaRecord
	if replace != nil {
		// Lock and collect the slot's current occupants before deleting
		// them, so the single-file invariant never transiently shows two
		rows, err := tx.QueryContext(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE collection_name = $1 AND curator_type = $2 AND curator_id = $3
		FOR UPDATE
		`, replace.CollectionName, replace.CuratorType, replace.CuratorID)
		if err != nil {
			return nil, fmt.Errorf("failed to query single file slot: %w", err)
		}
		replaced, err = scanMediaRows(rows)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
		DELETE FROM media
		WHERE collection_name = $1 AND curator_type = $2 AND curator_id = $3
		`, replace.CollectionName, replace.CuratorType, replace.CuratorID)
		if err != nil {
			return nil, fmt.Errorf("failed to clear single file slot: %w", err)
		}
	}

	properties, err := json.Marshal(record.CustomProperties)
	if err != nil {
		return nil, fmt.Errorf("failed to encode custom properties: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO media (id, name, file_name, collection_name, disk, mime_type, size, custom_properties, order_column, curator_id, curator_type, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, record.ID, record.Name, record.FileName, record.CollectionName, record.Disk,
		record.MimeType, record.Size, properties, nullInt(record.OrderColumn),
		nullString(record.CuratorID), nullString(record.CuratorType),
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media record: %w", err)
	}

	if write != nil {
		if err := write(record); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit media record: %w", err)
	}

	return replaced, nil
}

func (p *Postgres) GetMedia(ctx context.Context, id string) (*types.MediaRecord, error) {
	row := p.Db.QueryRowContext(ctx, `
	SELECT `+mediaColumns+`
	FROM media
	WHERE id = $1
	`, id)

	record, err := scanMediaRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrMediaNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Postgres) ListMedia(ctx context.Context, curatorID, curatorType, collection string) ([]types.MediaRecord, error) {
	query := `
	SELECT ` + mediaColumns + `
	FROM media
	WHERE curator_id = $1 AND curator_type = $2
	`
	args := []any{curatorID, curatorType}
	if collection != "" {
		query += ` AND collection_name = $3`
		args = append(args, collection)
	}
	query += ` ORDER BY order_column ASC NULLS LAST, created_at ASC`

	rows, err := p.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return scanMediaRows(rows)
}

func (p *Postgres) DeleteMedia(ctx context.Context, id string) error {
	result, err := p.Db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMediaNotFound
	}
	return nil
}

func (p *Postgres) DeleteMediaForCurator(ctx context.Context, curatorID, curatorType, collection string) ([]types.MediaRecord, error) {
	query := `
	DELETE FROM media
	WHERE curator_id = $1 AND curator_type = $2
	`
	args := []any{curatorID, curatorType}
	if collection != "" {
		query += ` AND collection_name = $3`
		args = append(args, collection)
	}
	query += ` RETURNING ` + mediaColumns

	rows, err := p.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete curator media: %w", err)
	}
	return scanMediaRows(rows)
}

func (p *Postgres) UpdateMedia(ctx context.Context, record *types.MediaRecord) error {
	record.UpdatedAt = time.Now().UTC()

	result, err := p.Db.ExecContext(ctx, `
	UPDATE media
	SET collection_name = $1, order_column = $2, curator_id = $3, curator_type = $4, updated_at = $5
	WHERE id = $6
	`, record.CollectionName, nullInt(record.OrderColumn),
		nullString(record.CuratorID), nullString(record.CuratorType),
		record.UpdatedAt, record.ID)
	if err != nil {
		return fmt.Errorf("failed to update media record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMediaNotFound
	}
	return nil
}

const mediaColumns = `id, name, file_name, collection_name, disk, mime_type, size, custom_properties, order_column, curator_id, curator_type, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaRow(row rowScanner) (*types.MediaRecord, error) {
	var (
		record      types.MediaRecord
		properties  []byte
		orderColumn sql.NullInt64
		curatorID   sql.NullString
		curatorType sql.NullString
	)

	err := row.Scan(&record.ID, &record.Name, &record.FileName, &record.CollectionName,
		&record.Disk, &record.MimeType, &record.Size, &properties, &orderColumn,
		&curatorID, &curatorType, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(properties) > 0 {
		if err := json.Unmarshal(properties, &record.CustomProperties); err != nil {
			return nil, fmt.Errorf("failed to decode custom properties: %w", err)
		}
	}
	if record.CustomProperties == nil {
		record.CustomProperties = map[string]any{}
	}
	if orderColumn.Valid {
		order := int(orderColumn.Int64)
		record.OrderColumn = &order
	}
	record.CuratorID = curatorID.String
	record.CuratorType = curatorType.String

	return &record, nil
}

func scanMediaRows(rows *sql.Rows) ([]types.MediaRecord, error) {
	defer rows.Close()

	var records []types.MediaRecord
	for rows.Next() {
		record, err := scanMediaRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
