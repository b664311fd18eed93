package ports

import (
	"context"
	"encoding/json"
)

// EngineQuery is the request shape forwarded to the analysis engine
// when running a stored query.
type EngineQuery struct {
	UserID         int64           `json:"user_id"`
	QueryID        int64           `json:"query_id"`
	Query          string          `json:"query"`
	ComponentsInfo json.RawMessage `json:"components_info"`
}

// EngineClient is the analysis engine peer. Responses are returned
// verbatim; this layer adds nothing beyond authorization and transport.
type EngineClient interface {
	UserToken(ctx context.Context) (json.RawMessage, error)
	SendQuery(ctx context.Context, req EngineQuery) (json.RawMessage, error)
	StartSimulation(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	StepSimulation(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
}
