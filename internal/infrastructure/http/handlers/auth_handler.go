package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/auth"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
)

type AuthHandler struct {
	login    *auth.Login
	refresh  *auth.Refresh
	logout   *auth.Logout
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		login:    login,
		refresh:  refresh,
		logout:   logout,
		validate: validator.New(),
		log:      log,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"omitempty,max=32"`
		Email    string `json:"email" validate:"omitempty,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	pair, err := h.login.Execute(r.Context(), auth.LoginInput{
		Username: body.Username,
		Email:    SanitizeEmail(body.Email),
		Password: SanitizePassword(body.Password),
	})
	if err != nil {
		AuditLog(h.log, r, "auth.login", 0, false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "auth.login", 0, true, "")
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.refresh.Execute(r.Context(), middleware.BearerToken(r))
	if err != nil {
		AuditLog(h.log, r, "auth.refresh", 0, false, err.Error())
		middleware.RecordAuthAttempt("refresh", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "auth.refresh", 0, true, "")
	middleware.RecordAuthAttempt("refresh", true)
	writeJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := h.logout.Execute(r.Context(), middleware.BearerToken(r))
	if err != nil {
		AuditLog(h.log, r, "auth.logout", userID, false, err.Error())
		middleware.RecordAuthAttempt("logout", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "auth.logout", userID, true, "")
	middleware.RecordAuthAttempt("logout", true)
	w.WriteHeader(http.StatusNoContent)
}
