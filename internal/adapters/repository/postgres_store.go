package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/retailops/loadboard/internal/infrastructure/database"
	"github.com/retailops/loadboard/internal/ports"
)

// PostgresStore keeps each collection in its own table of JSONB documents:
// (id uuid, seq bigserial, doc jsonb). seq gives the natural order.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a document store over an open connection
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Collection returns the collection backed by the table of the same name
func (s *PostgresStore) Collection(name string) ports.Collection {
	return &postgresCollection{db: s.db.DB, table: pq.QuoteIdentifier(name)}
}

// Ping checks the connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type postgresCollection struct {
	db    *sqlx.DB
	table string
}

type documentRow struct {
	ID  string `db:"id"`
	Doc []byte `db:"doc"`
}

func (r documentRow) document() ports.Document {
	return ports.Document{ID: r.ID, Body: json.RawMessage(r.Doc)}
}

func (c *postgresCollection) Find(ctx context.Context, matches ...ports.Match) ([]ports.Document, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	for _, m := range matches {
		conditions = append(conditions, fmt.Sprintf(
			"position(lower($%d) in lower(coalesce(doc->>$%d, ''))) > 0", argIndex+1, argIndex))
		args = append(args, m.Field, m.Substring)
		argIndex += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT id::text AS id, doc FROM %s %s ORDER BY seq`, c.table, whereClause)

	var rows []documentRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	docs := make([]ports.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.document())
	}
	return docs, nil
}

func (c *postgresCollection) Get(ctx context.Context, id string) (ports.Document, error) {
	if !validID(id) {
		return ports.Document{}, ports.ErrDocumentNotFound
	}

	query := fmt.Sprintf(`SELECT id::text AS id, doc FROM %s WHERE id = $1`, c.table)

	var row documentRow
	err := c.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Document{}, ports.ErrDocumentNotFound
	}
	if err != nil {
		return ports.Document{}, fmt.Errorf("get document: %w", err)
	}
	return row.document(), nil
}

func (c *postgresCollection) Insert(ctx context.Context, body json.RawMessage) (string, error) {
	query := fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1::jsonb) RETURNING id::text`, c.table)

	var id string
	if err := c.db.QueryRowxContext(ctx, query, string(body)).Scan(&id); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

func (c *postgresCollection) Merge(ctx context.Context, id string, patch json.RawMessage) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	// jsonb || jsonb replaces top-level keys only.
	query := fmt.Sprintf(`UPDATE %s SET doc = doc || $2::jsonb WHERE id = $1`, c.table)

	result, err := c.db.ExecContext(ctx, query, id, string(patch))
	if err != nil {
		return false, fmt.Errorf("merge document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (c *postgresCollection) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.table)

	result, err := c.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// validID rejects ids that could never have been assigned by the store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var _ ports.DocumentStore = (*PostgresStore)(nil)
