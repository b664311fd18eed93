package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/project"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
)

type ProjectsHandler struct {
	create *project.Create
	get    *project.Get
	update *project.Update
	remove *project.Delete
	list   *project.List
	log    zerolog.Logger
}

func NewProjectsHandler(create *project.Create, get *project.Get, update *project.Update, remove *project.Delete, list *project.List, log zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		create: create,
		get:    get,
		update: update,
		remove: remove,
		list:   list,
		log:    log,
	}
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	var body struct {
		Name           string          `json:"name"`
		ComponentsInfo json.RawMessage `json:"components_info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	created, err := h.create.Execute(r.Context(), project.CreateInput{
		CallerID:       identity.UserID,
		SessionID:      identity.SessionID,
		Name:           body.Name,
		ComponentsInfo: body.ComponentsInfo,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": created.ID})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	projectID, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.get.Execute(r.Context(), project.GetInput{
		CallerID:  identity.UserID,
		SessionID: identity.SessionID,
		ProjectID: projectID,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project": map[string]interface{}{
			"id":              out.Project.ID,
			"name":            out.Project.Name,
			"owner_id":        out.Project.OwnerID,
			"components_info": out.Project.ComponentsInfo,
		},
		"queries": queryViews(out.Queries),
		"in_use":  out.InUse,
	})
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		Name           *string         `json:"name"`
		ComponentsInfo json.RawMessage `json:"components_info"`
		OwnerID        *int64          `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	updated, err := h.update.Execute(r.Context(), project.UpdateInput{
		CallerID:       identity.UserID,
		SessionID:      identity.SessionID,
		ProjectID:      projectID,
		Name:           body.Name,
		ComponentsInfo: body.ComponentsInfo,
		OwnerID:        body.OwnerID,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       updated.ID,
		"name":     updated.Name,
		"owner_id": updated.OwnerID,
	})
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	projectID, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.remove.Execute(r.Context(), identity.UserID, projectID); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	infos, err := h.list.Execute(r.Context(), identity.UserID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if infos == nil {
		infos = []domain.ProjectInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": infos})
}

// pathID parses the {id} chi route parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid id")
		return 0, false
	}
	return id, true
}

func queryViews(queries []domain.Query) []map[string]interface{} {
	views := make([]map[string]interface{}, 0, len(queries))
	for _, q := range queries {
		views = append(views, map[string]interface{}{
			"id":       q.ID,
			"query":    q.String,
			"result":   q.Result,
			"outdated": q.Outdated,
		})
	}
	return views
}
