package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/embercortex/embercortex/internal/domain"
)

// CollectionRepository implements domain.CollectionRepository. It mirrors
// the RAG server's collection listing; the RAG server stays authoritative.
type CollectionRepository struct {
	db *DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// UpsertAll refreshes the mirror with the latest upstream listing
func (r *CollectionRepository) UpsertAll(ctx context.Context, collections []domain.Collection) error {
	query := `
		INSERT INTO collections (name, description, document_count, last_synced)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			document_count = excluded.document_count,
			last_synced = excluded.last_synced
	`

	now := formatTime(time.Now())
	for _, c := range collections {
		if _, err := r.db.conn.ExecContext(ctx, query, c.Name, nullString(c.Description), c.DocumentCount, now); err != nil {
			return fmt.Errorf("failed to upsert collection %q: %w", c.Name, err)
		}
	}
	return nil
}

// List returns the mirrored collections, ordered by name
func (r *CollectionRepository) List(ctx context.Context) ([]domain.Collection, error) {
	query := `
		SELECT name, description, document_count, last_synced
		FROM collections
		ORDER BY name ASC
	`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []domain.Collection
	for rows.Next() {
		var c domain.Collection
		var description, lastSynced sql.NullString

		if err := rows.Scan(&c.Name, &description, &c.DocumentCount, &lastSynced); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}

		c.Description = description.String
		if lastSynced.Valid {
			if c.LastSynced, err = parseTime(lastSynced.String); err != nil {
				return nil, err
			}
		}

		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}

	return collections, nil
}
