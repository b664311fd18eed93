package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/query"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
)

type QueriesHandler struct {
	create *query.Create
	update *query.Update
	remove *query.Delete
	run    *query.Run
	log    zerolog.Logger
}

func NewQueriesHandler(create *query.Create, update *query.Update, remove *query.Delete, run *query.Run, log zerolog.Logger) *QueriesHandler {
	return &QueriesHandler{
		create: create,
		update: update,
		remove: remove,
		run:    run,
		log:    log,
	}
}

func (h *QueriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	var body struct {
		ProjectID int64  `json:"project_id"`
		String    string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	created, err := h.create.Execute(r.Context(), query.CreateInput{
		CallerID:  identity.UserID,
		ProjectID: body.ProjectID,
		String:    body.String,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": created.ID})
}

func (h *QueriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	queryID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		String string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	updated, err := h.update.Execute(r.Context(), query.UpdateInput{
		CallerID: identity.UserID,
		QueryID:  queryID,
		String:   body.String,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       updated.ID,
		"query":    updated.String,
		"outdated": updated.Outdated,
	})
}

func (h *QueriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	queryID, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.remove.Execute(r.Context(), identity.UserID, queryID); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Run forwards the stored query to the engine and returns the cached row.
func (h *QueriesHandler) Run(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	queryID, ok := pathID(w, r)
	if !ok {
		return
	}
	ran, err := h.run.Execute(r.Context(), identity.UserID, queryID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       ran.ID,
		"query":    ran.String,
		"result":   ran.Result,
		"outdated": ran.Outdated,
	})
}
