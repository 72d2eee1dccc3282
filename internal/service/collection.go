package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/embercortex/embercortex/internal/domain"
	"github.com/embercortex/embercortex/internal/repository/redis"
)

// CollectionService serves the RAG collection listing. Redis fronts the
// listing with a short TTL when configured; the sqlite mirror is
// refreshed on every successful fetch and serves as a fallback when the
// RAG service is unreachable.
type CollectionService struct {
	rag    RAGClient
	cache  *redis.CollectionCache
	mirror domain.CollectionRepository
}

// NewCollectionService creates a new collection service. cache may be nil.
func NewCollectionService(rag RAGClient, cache *redis.CollectionCache, mirror domain.CollectionRepository) *CollectionService {
	return &CollectionService{rag: rag, cache: cache, mirror: mirror}
}

// List returns the known collections
func (s *CollectionService) List(ctx context.Context) ([]domain.Collection, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	upstream, err := s.rag.ListCollections(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("collection listing unavailable, falling back to mirror")
		mirrored, mirrorErr := s.mirror.List(ctx)
		if mirrorErr != nil || len(mirrored) == 0 {
			return nil, err
		}
		return mirrored, nil
	}

	now := time.Now().UTC()
	collections := make([]domain.Collection, 0, len(upstream))
	for _, c := range upstream {
		collections = append(collections, domain.Collection{
			Name:          c.Name,
			Description:   c.Metadata.Description,
			DocumentCount: c.Count,
			LastSynced:    now,
		})
	}

	if err := s.mirror.UpsertAll(ctx, collections); err != nil {
		log.Error().Err(err).Msg("failed to refresh collection mirror")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, collections); err != nil {
			log.Error().Err(err).Msg("failed to cache collection listing")
		}
	}

	return collections, nil
}
