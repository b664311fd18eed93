package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
)

// EngineHandler forwards authenticated requests to the analysis engine
// and returns its responses unchanged.
type EngineHandler struct {
	engine ports.EngineClient
	log    zerolog.Logger
}

func NewEngineHandler(engine ports.EngineClient, log zerolog.Logger) *EngineHandler {
	return &EngineHandler{engine: engine, log: log}
}

func (h *EngineHandler) UserToken(w http.ResponseWriter, r *http.Request) {
	if middleware.IdentityFromContext(r.Context()) == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	h.forward(w, func() (json.RawMessage, error) {
		return h.engine.UserToken(r.Context())
	})
}

// SendQuery forwards an ad-hoc query that is not stored in the query
// cache. Stored queries go through the run endpoint instead.
func (h *EngineHandler) SendQuery(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	var req ports.EngineQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	req.UserID = identity.UserID
	h.forward(w, func() (json.RawMessage, error) {
		return h.engine.SendQuery(r.Context(), req)
	})
}

func (h *EngineHandler) StartSimulation(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, h.engine.StartSimulation)
}

func (h *EngineHandler) StepSimulation(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, h.engine.StepSimulation)
}

func (h *EngineHandler) passthrough(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, body json.RawMessage) (json.RawMessage, error)) {
	if middleware.IdentityFromContext(r.Context()) == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	h.forward(w, func() (json.RawMessage, error) {
		return call(r.Context(), body)
	})
}

func (h *EngineHandler) forward(w http.ResponseWriter, call func() (json.RawMessage, error)) {
	resp, err := call()
	if err != nil {
		h.log.Error().Err(err).Msg("engine call failed")
		writeDomainErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp)
}
