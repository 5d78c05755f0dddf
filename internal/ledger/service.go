package ledger

import (
	"context"
	"fmt"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/pagination"
)

// ListInput is the read-side query for the admin ledger listing.
type ListInput struct {
	ConsignmentID  string
	DisplayOrderID string
	Limit          int
	Cursor         string
}

// ListResult carries one page of entries plus the cursor for the next one.
type ListResult struct {
	Entries    []models.LedgerEntry
	NextCursor string
}

// Service is the read surface over the ledger. Writes go through the
// carrier webhook processor only.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	rows, err := s.repo.List(ctx, ListFilter{
		ConsignmentID:  input.ConsignmentID,
		DisplayOrderID: input.DisplayOrderID,
		Limit:          limit,
		Cursor:         cursor,
	})
	if err != nil {
		return nil, err
	}

	result := &ListResult{Entries: rows}
	if len(rows) > limit {
		result.Entries = rows[:limit]
		last := result.Entries[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}
