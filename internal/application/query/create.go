package query

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

type CreateInput struct {
	CallerID  int64
	ProjectID int64
	String    string
}

type Create struct {
	authorizer *access.Authorizer
	queries    ports.QueryRepository
}

func NewCreate(authorizer *access.Authorizer, queries ports.QueryRepository) *Create {
	return &Create{authorizer: authorizer, queries: queries}
}

// Execute stores a new query with no result and outdated unset.
func (uc *Create) Execute(ctx context.Context, input CreateInput) (*domain.Query, error) {
	if input.String == "" {
		return nil, errors.E(errors.KindInvalidArgument, "no query string provided")
	}
	if _, err := uc.authorizer.Require(ctx, input.CallerID, input.ProjectID, domain.RoleEditor); err != nil {
		return nil, err
	}
	return uc.queries.Create(ctx, domain.Query{
		ProjectID: input.ProjectID,
		String:    input.String,
	})
}
