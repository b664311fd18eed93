package query

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type Delete struct {
	authorizer *access.Authorizer
	queries    ports.QueryRepository
}

func NewDelete(authorizer *access.Authorizer, queries ports.QueryRepository) *Delete {
	return &Delete{authorizer: authorizer, queries: queries}
}

func (uc *Delete) Execute(ctx context.Context, callerID, queryID int64) (*domain.Query, error) {
	current, err := uc.queries.GetByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.E(errors.KindNotFound, "no query found with given id")
	}
	if _, err := uc.authorizer.Require(ctx, callerID, current.ProjectID, domain.RoleEditor); err != nil {
		return nil, err
	}
	return uc.queries.Delete(ctx, queryID)
}
