package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medinfo-backend/pkg/database"
)

// postgresStore implements Store on a single JSONB-backed table.
// Every collection shares the table; the collection column partitions it.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the store and makes sure the documents
// table and its indexes exist.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (Store, error) {
	s := &postgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureSchema runs the table and index DDL in one transaction so a
// half-created schema never survives a failed startup.
func (s *postgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id         UUID PRIMARY KEY,
			collection TEXT NOT NULL,
			fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
			is_active  BOOLEAN NOT NULL DEFAULT TRUE,
			created_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_fields ON documents USING GIN (fields)`,
	}
	err := database.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

const docColumns = `id, collection, fields, is_active, created_by, created_at, updated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	var fieldsRaw []byte
	err := row.Scan(
		&doc.ID,
		&doc.Collection,
		&fieldsRaw,
		&doc.IsActive,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fieldsRaw, &doc.Fields); err != nil {
		return nil, fmt.Errorf("decode document fields: %w", err)
	}
	return &doc, nil
}

func (s *postgresStore) Create(ctx context.Context, doc *Document) (*Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	fieldsRaw, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode document fields: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO documents (id, collection, fields, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + docColumns

	row := s.pool.QueryRow(ctx, query,
		doc.ID, doc.Collection, fieldsRaw, doc.IsActive, doc.CreatedBy, now)

	created, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("create document in %s: %w", doc.Collection, err)
	}
	return created, nil
}

func (s *postgresStore) FindByID(ctx context.Context, collection string, id uuid.UUID) (*Document, error) {
	query := `SELECT ` + docColumns + ` FROM documents WHERE collection = $1 AND id = $2`

	doc, err := scanDocument(s.pool.QueryRow(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s by id: %w", collection, err)
	}
	return doc, nil
}

func (s *postgresStore) FindOne(ctx context.Context, collection string, filter map[string]string) (*Document, error) {
	where, args := buildWhere(collection, filter, nil)
	query := `SELECT ` + docColumns + ` FROM documents ` + where + ` LIMIT 1`

	doc, err := scanDocument(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find one in %s: %w", collection, err)
	}
	return doc, nil
}

func (s *postgresStore) Find(ctx context.Context, collection string, q Query) ([]*Document, error) {
	where, args := buildWhere(collection, q.Filter, q.Contains)
	query := `SELECT ` + docColumns + ` FROM documents ` + where

	if q.SortNewest {
		query += ` ORDER BY created_at DESC`
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}
	if q.Skip > 0 {
		query += fmt.Sprintf(` OFFSET %d`, q.Skip)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []*Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", collection, err)
	}
	return docs, nil
}

func (s *postgresStore) UpdateByID(ctx context.Context, collection string, id uuid.UUID, fields map[string]interface{}, isActive *bool) (*Document, error) {
	fieldsRaw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode update fields: %w", err)
	}

	// fields || $3 replaces top-level keys wholesale; nested structures
	// are overwritten, never merged.
	query := `
		UPDATE documents
		SET fields = fields || $3::jsonb,
		    is_active = COALESCE($4, is_active),
		    updated_at = NOW()
		WHERE collection = $1 AND id = $2
		RETURNING ` + docColumns

	doc, err := scanDocument(s.pool.QueryRow(ctx, query, collection, id, fieldsRaw, isActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update %s by id: %w", collection, err)
	}
	return doc, nil
}

func (s *postgresStore) DeleteByID(ctx context.Context, collection string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s by id: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) Count(ctx context.Context, collection string, filter map[string]string) (int, error) {
	where, args := buildWhere(collection, filter, nil)
	query := `SELECT COUNT(*) FROM documents ` + where

	var count int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return count, nil
}

// buildWhere builds a WHERE clause over the collection column plus
// JSONB field conditions. Field keys are interpolated via to_jsonb-safe
// quoting (->> with a parameter is not valid for the key position), so
// keys always come from entity schema descriptors, never user input.
func buildWhere(collection string, filter map[string]string, contains *Contains) (string, []interface{}) {
	clauses := []string{"collection = $1"}
	args := []interface{}{collection}

	// Deterministic clause order keeps queries cacheable and testable.
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, filter[k])
		clauses = append(clauses, fmt.Sprintf("fields->>'%s' = $%d", sanitizeKey(k), len(args)))
	}

	if contains != nil {
		args = append(args, "%"+escapeLike(contains.Value)+"%")
		clauses = append(clauses, fmt.Sprintf("fields->>'%s' ILIKE $%d", sanitizeKey(contains.Field), len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// sanitizeKey strips anything that could break out of the quoted JSONB
// key. Schema field names are plain identifiers; this is a guard, not
// an escape mechanism.
func sanitizeKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, k)
}

func escapeLike(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `%`, `\%`)
	v = strings.ReplaceAll(v, `_`, `\_`)
	return v
}
