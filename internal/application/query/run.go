package query

import (
	"context"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// Run forwards a stored query to the analysis engine and caches the
// response. Any member may run; the engine is called only after
// authorization succeeds and every storage read has finished, so a slow
// or dead engine never sits inside a transaction.
type Run struct {
	authorizer *access.Authorizer
	projects   ports.ProjectRepository
	queries    ports.QueryRepository
	engine     ports.EngineClient
}

func NewRun(authorizer *access.Authorizer, projects ports.ProjectRepository, queries ports.QueryRepository, engine ports.EngineClient) *Run {
	return &Run{authorizer: authorizer, projects: projects, queries: queries, engine: engine}
}

func (uc *Run) Execute(ctx context.Context, callerID, queryID int64) (*domain.Query, error) {
	query, err := uc.queries.GetByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, errors.E(errors.KindNotFound, "no query found with given id")
	}
	if _, err := uc.authorizer.Require(ctx, callerID, query.ProjectID, domain.RoleReader); err != nil {
		return nil, err
	}
	project, err := uc.projects.GetByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.E(errors.KindNotFound, "no project found with given id")
	}

	result, err := uc.engine.SendQuery(ctx, ports.EngineQuery{
		UserID:         callerID,
		QueryID:        query.ID,
		Query:          query.String,
		ComponentsInfo: project.ComponentsInfo,
	})
	if err != nil {
		return nil, err
	}

	next := *query
	next.Result = result
	next.Outdated = false
	return uc.queries.Update(ctx, next)
}
