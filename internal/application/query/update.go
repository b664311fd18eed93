package query

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type UpdateInput struct {
	CallerID int64
	QueryID  int64
	String   string
}

type Update struct {
	authorizer *access.Authorizer
	queries    ports.QueryRepository
}

func NewUpdate(authorizer *access.Authorizer, queries ports.QueryRepository) *Update {
	return &Update{authorizer: authorizer, queries: queries}
}

// Execute rewrites the query string. The cached result and the outdated
// flag stay as they are; only a run refreshes them.
func (uc *Update) Execute(ctx context.Context, input UpdateInput) (*domain.Query, error) {
	if input.String == "" {
		return nil, errors.E(errors.KindInvalidArgument, "no query string provided")
	}
	current, err := uc.queries.GetByID(ctx, input.QueryID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.E(errors.KindNotFound, "no query found with given id")
	}
	if _, err := uc.authorizer.Require(ctx, input.CallerID, current.ProjectID, domain.RoleEditor); err != nil {
		return nil, err
	}
	next := *current
	next.String = input.String
	return uc.queries.Update(ctx, next)
}
