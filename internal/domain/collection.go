package domain

import (
	"context"
	"time"
)

// Collection describes one RAG document collection. The RAG service owns
// collections; this side only mirrors the listing.
type Collection struct {
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	DocumentCount int       `json:"document_count"`
	LastSynced    time.Time `json:"last_synced,omitempty"`
}

// CollectionRepository is the local cache mirror of the RAG service's
// collection listing. Not authoritative.
type CollectionRepository interface {
	UpsertAll(ctx context.Context, collections []Collection) error
	List(ctx context.Context) ([]Collection, error)
}
