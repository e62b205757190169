// Package search queries external evidence sources for claims.
package search

import (
	"context"

	"github.com/ppiankov/truthquest/internal/model"
)

// Searcher returns candidate evidence for a query, best match first
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.EvidenceHit, error)
}
