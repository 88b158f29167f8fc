package compendium

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-muncher/internal/pkg/idgen"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	storage_id TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	name TEXT NOT NULL,
	body TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE(collection, name)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// SQLiteConfig contains configuration for the SQLite compendium repository.
type SQLiteConfig struct {
	// Path of the database file
	Path string
	// IDGenerator assigns storage ids (optional, defaults to UUIDs)
	IDGenerator idgen.Generator
	// Clock stamps UpdatedAt (optional)
	Clock clock.Clock
}

// Validate validates the SQLiteConfig.
func (cfg *SQLiteConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Path == "" {
		return errors.InvalidArgument("sqlite path is required")
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = idgen.NewUUID("")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return nil
}

// SQLiteRepository stores collections in a single SQLite table
type SQLiteRepository struct {
	db          *sql.DB
	idGenerator idgen.Generator
	clock       clock.Clock
}

// NewSQLite opens the database and creates the schema if needed
func NewSQLite(ctx context.Context, cfg *SQLiteConfig) (*SQLiteRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", sqliteDSN(cfg.Path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database")
	}
	// One writer at a time; the upserter fans out and would otherwise hit SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to open %s", cfg.Path)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to create schema")
	}

	return &SQLiteRepository{
		db:          db,
		idGenerator: cfg.IDGenerator,
		clock:       cfg.Clock,
	}, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// FindByName implements Repository
func (r *SQLiteRepository) FindByName(ctx context.Context, input FindByNameInput) (*FindByNameOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	errors.ValidateRequired("name", input.Name, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT storage_id, name, body, updated_at FROM documents WHERE collection = ? AND name = ?`,
		input.Collection, input.Name)
	doc, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("%s not found in %s", input.Name, input.Collection)
		}
		return nil, errors.Wrapf(err, "failed to look up %s", input.Name)
	}
	return &FindByNameOutput{Document: doc}, nil
}

// Insert implements Repository
func (r *SQLiteRepository) Insert(ctx context.Context, input InsertInput) (*InsertOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	validateEntity(input.Entity, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(input.Entity)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal document")
	}

	doc := &Document{
		StorageID: r.idGenerator.Generate(),
		Name:      input.Entity.Name,
		Entity:    input.Entity,
		UpdatedAt: r.clock.Now(),
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (storage_id, collection, name, body, updated_at) VALUES (?, ?, ?, ?, ?)`,
		doc.StorageID, input.Collection, doc.Name, string(body), formatTime(doc.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.AlreadyExistsf("%s already exists in %s", doc.Name, input.Collection)
		}
		return nil, errors.Wrapf(err, "failed to insert %s", doc.Name)
	}

	return &InsertOutput{Document: doc}, nil
}

// Update implements Repository
func (r *SQLiteRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	errors.ValidateRequired("storage_id", input.StorageID, vb)
	validateEntity(input.Entity, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(input.Entity)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal document")
	}

	doc := &Document{
		StorageID: input.StorageID,
		Name:      input.Entity.Name,
		Entity:    input.Entity,
		UpdatedAt: r.clock.Now(),
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET name = ?, body = ?, updated_at = ? WHERE storage_id = ? AND collection = ?`,
		doc.Name, string(body), formatTime(doc.UpdatedAt), doc.StorageID, input.Collection)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.AlreadyExistsf("%s already exists in %s", doc.Name, input.Collection)
		}
		return nil, errors.Wrapf(err, "failed to update %s", doc.Name)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read update result")
	}
	if affected == 0 {
		return nil, errors.NotFoundf("document %s not found in %s", input.StorageID, input.Collection)
	}

	return &UpdateOutput{Document: doc}, nil
}

// List implements Repository
func (r *SQLiteRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	vb := errors.NewValidationBuilder()
	validateCollection(input.Collection, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT storage_id, name, body, updated_at FROM documents WHERE collection = ? ORDER BY name`,
		input.Collection)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", input.Collection)
	}
	defer func() { _ = rows.Close() }()

	documents := []*Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", input.Collection)
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", input.Collection)
	}

	return &ListOutput{Documents: documents}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc       Document
		body      string
		updatedAt string
	)
	if err := row.Scan(&doc.StorageID, &doc.Name, &body, &updatedAt); err != nil {
		return nil, err
	}

	var entity entities.Entity
	if err := json.Unmarshal([]byte(body), &entity); err != nil {
		return nil, err
	}
	doc.Entity = &entity

	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, err
	}
	doc.UpdatedAt = parsed
	return &doc, nil
}

// sqliteDSN carries the pragmas in the connection string so every pooled
// connection gets them, not just the first one
func sqliteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ Repository = (*SQLiteRepository)(nil)
