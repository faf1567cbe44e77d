// Package tracker describes the issue tracker queries that feed deploy lists.
package tracker

//go:generate mockgen -destination=../mocks/tracker.go -package=mocks -source=tracker.go

import (
	"context"
	"fmt"

	"github.com/shini4i/postdeplist/internal/models"
)

// Query stages reported by QueryError.
const (
	StageFilter = "filter"
	StageSearch = "search"
)

// Searcher resolves a saved filter and returns the issues it matches.
type Searcher interface {
	Search(ctx context.Context, filterID string) ([]models.Issue, error)
}

// QueryError reports a failed tracker lookup together with the stage that failed.
type QueryError struct {
	Stage string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("tracker %s: %v", e.Stage, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
