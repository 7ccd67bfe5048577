package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hotellisting/hotellisting-api/application/port/inbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/middleware"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/response"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/validator"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/logger"
)

// AccountHandler serves /api/Account.
type AccountHandler struct {
	accounts  inbound.AuthUseCase
	validator *validator.Validator
	logger    logger.Logger
}

func NewAccountHandler(accounts inbound.AuthUseCase, v *validator.Validator, log logger.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		validator: v,
		logger:    log,
	}
}

// RegisterRoutes mounts the account routes. Role registration requires an
// Administrator bearer token.
func (h *AccountHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware) {
	account := router.PathPrefix("/api/Account").Subrouter()
	account.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	account.Handle("/register/role",
		auth.RequireRole(entity.RoleAdministrator, http.HandlerFunc(h.RegisterWithRole)),
	).Methods(http.MethodPost)
	account.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	account.HandleFunc("/refreshtoken", h.RefreshToken).Methods(http.MethodPost)
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req inbound.RegistrationRequest
	if !h.decode(w, r, &req) {
		return
	}

	errs, err := h.accounts.Register(r.Context(), req)
	h.writeRegistration(w, r, errs, err)
}

func (h *AccountHandler) RegisterWithRole(w http.ResponseWriter, r *http.Request) {
	var req inbound.RoleRegistrationRequest
	if !h.decode(w, r, &req) {
		return
	}

	errs, err := h.accounts.RegisterWithRole(r.Context(), req)
	h.writeRegistration(w, r, errs, err)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if resp == nil {
		response.Unauthorized(w, "Invalid email or password")
		return
	}
	response.Success(w, http.StatusOK, "Login successful", resp)
}

func (h *AccountHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req inbound.RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.accounts.RefreshToken(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if resp == nil {
		response.Unauthorized(w, "Invalid refresh token")
		return
	}
	response.Success(w, http.StatusOK, "Token refreshed", resp)
}

// decode reads and validates the JSON body into dst, writing a 400 on
// failure.
func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if fieldErrs := h.validator.Struct(dst); fieldErrs != nil {
		response.ValidationFailed(w, "Validation failed", fieldErrs)
		return false
	}
	return true
}

func (h *AccountHandler) writeRegistration(w http.ResponseWriter, r *http.Request, errs []valueobject.IdentityError, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(errs) > 0 {
		details := make(map[string]string, len(errs))
		for _, e := range errs {
			details[e.Code] = e.Description
		}
		response.ValidationFailed(w, "Registration failed", details)
		return
	}
	response.Success(w, http.StatusOK, "Registration successful", nil)
}

func (h *AccountHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "Account request failed", err, map[string]interface{}{
		"path": r.URL.Path,
	})
	response.FromError(w, err)
}
