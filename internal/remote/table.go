package remote

import (
	"context"
	"database/sql"
	"embed"

	"github.com/JaimeStill/image-lab/pkg/database"
	"github.com/JaimeStill/image-lab/pkg/repository"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the embedded generated_images schema.
func Migrations() *database.Migrations {
	return &database.Migrations{FS: migrationFS, Dir: "migrations"}
}

// Row is a generated_images table row.
type Row struct {
	ID           string
	Prompt       string
	AspectRatio  string
	Timestamp    int64
	Status       string
	StoragePath  string
	PublicURL    string
	ErrorMessage string
}

// Table is the metadata half of the remote store.
type Table interface {
	Insert(ctx context.Context, row Row) error
	List(ctx context.Context) ([]Row, error)
	StoragePath(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

type postgres struct {
	db *sql.DB
}

// NewTable returns a Table backed by PostgreSQL.
func NewTable(db *sql.DB) Table {
	return &postgres{db: db}
}

const columns = `id, prompt, aspect_ratio, timestamp, status, storage_path, public_url, error_message`

func scanRow(s repository.Scanner) (Row, error) {
	var r Row
	err := s.Scan(
		&r.ID, &r.Prompt, &r.AspectRatio, &r.Timestamp,
		&r.Status, &r.StoragePath, &r.PublicURL, &r.ErrorMessage,
	)
	return r, err
}

func (p *postgres) Insert(ctx context.Context, row Row) error {
	q := `INSERT INTO generated_images (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, q,
			row.ID, row.Prompt, row.AspectRatio, row.Timestamp,
			row.Status, row.StoragePath, row.PublicURL, row.ErrorMessage,
		)
		return struct{}{}, err
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (p *postgres) List(ctx context.Context) ([]Row, error) {
	q := `SELECT ` + columns + ` FROM generated_images ORDER BY timestamp DESC, id ASC`
	return repository.QueryMany(ctx, p.db, q, nil, scanRow)
}

func (p *postgres) StoragePath(ctx context.Context, id string) (string, error) {
	q := `SELECT storage_path FROM generated_images WHERE id = $1`

	path, err := repository.QueryOne(ctx, p.db, q, []any{id}, func(s repository.Scanner) (string, error) {
		var path string
		err := s.Scan(&path)
		return path, err
	})
	if err != nil {
		return "", repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return path, nil
}

func (p *postgres) Delete(ctx context.Context, id string) error {
	q := `DELETE FROM generated_images WHERE id = $1`

	_, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, ErrNotFound, q, id)
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
