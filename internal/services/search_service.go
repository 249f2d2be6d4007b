package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"inkwell/internal/errs"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// SearchService answers semantic queries over documents the caller can read.
type SearchService struct {
	embedder Embedder
	embRepo  EmbeddingRepository
}

// NewSearchService creates a new search service
func NewSearchService(embedder Embedder, embRepo EmbeddingRepository) *SearchService {
	return &SearchService{embedder: embedder, embRepo: embRepo}
}

// Search embeds the query and returns the closest chunks among accessible
// documents. Access filtering happens in the SQL, not after the fact, so a
// page of results is never silently emptied.
func (s *SearchService) Search(ctx context.Context, userID, query string, limit int) ([]*models.SearchResult, error) {
	if query == "" {
		return nil, errs.InvalidArgument("query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	ctx, span := middleware.StartSpan(ctx, "SearchService.Search",
		attribute.Int("limit", limit),
	)
	defer span.End()

	vector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		err = errs.Upstream("openai", err)
		middleware.AddSpanError(ctx, err)
		return nil, err
	}
	return s.embRepo.SemanticSearch(ctx, userID, vector, limit)
}
