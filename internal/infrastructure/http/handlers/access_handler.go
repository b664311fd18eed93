package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
)

type AccessHandler struct {
	grant  *access.Grant
	update *access.Update
	revoke *access.Revoke
	list   *access.List
	log    zerolog.Logger
}

func NewAccessHandler(grant *access.Grant, update *access.Update, revoke *access.Revoke, list *access.List, log zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		grant:  grant,
		update: update,
		revoke: revoke,
		list:   list,
		log:    log,
	}
}

// Grant assigns a role on the project in the path. The grantee may be
// named by id, username or email.
func (h *AccessHandler) Grant(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	projectID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Role     domain.Role `json:"role"`
		UserID   *int64      `json:"user_id"`
		Username *string     `json:"username"`
		Email    *string     `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	granted, err := h.grant.Execute(r.Context(), access.GrantInput{
		CallerID:  identity.UserID,
		ProjectID: projectID,
		Role:      body.Role,
		UserID:    body.UserID,
		Username:  body.Username,
		Email:     body.Email,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         granted.ID,
		"role":       granted.Role,
		"user_id":    granted.UserID,
		"project_id": granted.ProjectID,
	})
}

func (h *AccessHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	accessID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Role domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	updated, err := h.update.Execute(r.Context(), access.UpdateInput{
		CallerID: identity.UserID,
		AccessID: accessID,
		Role:     body.Role,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":   updated.ID,
		"role": updated.Role,
	})
}

func (h *AccessHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	accessID, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.revoke.Execute(r.Context(), identity.UserID, accessID); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccessHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	projectID, ok := pathID(w, r)
	if !ok {
		return
	}
	infos, err := h.list.Execute(r.Context(), identity.UserID, projectID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if infos == nil {
		infos = []domain.AccessInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accesses": infos})
}
