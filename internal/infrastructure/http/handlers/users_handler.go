package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/user"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
)

type UsersHandler struct {
	register *user.Register
	update   *user.Update
	remove   *user.Delete
	list     *user.List
	validate *validator.Validate
	log      zerolog.Logger
}

func NewUsersHandler(register *user.Register, update *user.Update, remove *user.Delete, list *user.List, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		register: register,
		update:   update,
		remove:   remove,
		list:     list,
		validate: validator.New(),
		log:      log,
	}
}

func (h *UsersHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"required,max=32"`
		Email    string `json:"email" validate:"required,max=254"`
		Password string `json:"password" validate:"required,min=1,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	created, err := h.register.Execute(r.Context(), user.RegisterInput{
		Username: body.Username,
		Email:    SanitizeEmail(body.Email),
		Password: SanitizePassword(body.Password),
	})
	if err != nil {
		AuditLog(h.log, r, "user.signup", 0, false, err.Error())
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "user.signup", created.ID, true, "")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       created.ID,
		"username": created.Username,
		"email":    created.Email,
	})
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	var body struct {
		Username *string `json:"username" validate:"omitempty,max=32"`
		Email    *string `json:"email" validate:"omitempty,max=254"`
		Password *string `json:"password" validate:"omitempty,min=1,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	updated, err := h.update.Execute(r.Context(), user.UpdateInput{
		UserID:   identity.UserID,
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       updated.ID,
		"username": updated.Username,
		"email":    updated.Email,
	})
}

func (h *UsersHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	deleted, err := h.remove.Execute(r.Context(), identity.UserID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "user.delete", deleted.ID, true, "")
	w.WriteHeader(http.StatusNoContent)
}

// List resolves public info for ?ids=1,2,3.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeErr(w, http.StatusBadRequest, "", "no user ids provided")
		return
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "invalid user id: "+part)
			return
		}
		ids = append(ids, id)
	}
	infos, err := h.list.Execute(r.Context(), ids)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": infos})
}
