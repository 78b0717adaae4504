package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskauth/internal/common"
	"github.com/dmitrijs2005/taskauth/internal/logging"
	"github.com/dmitrijs2005/taskauth/internal/server/auth"
	"github.com/dmitrijs2005/taskauth/internal/server/models"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// UserService is the part of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (string, error)
	AccessTokenValidity() time.Duration
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

type meResponse struct {
	UserID string `json:"user_id"`
}

type handlers struct {
	users    UserService
	validate *validator.Validate
	logger   logging.Logger
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !h.validateRequest(w, &req) {
		return
	}

	if _, err := h.users.Register(r.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooLong):
			writeError(w, http.StatusBadRequest, msgPasswordTooLong)
		case errors.Is(err, common.ErrValidation):
			writeError(w, http.StatusBadRequest, msgCredentialsRequired)
		case errors.Is(err, common.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, msgEmailTaken)
		default:
			h.internalError(r.Context(), w, "register", err)
		}
		return
	}

	_ = writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validateRequest(w, &req) {
		return
	}

	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			writeError(w, http.StatusBadRequest, msgCredentialsRequired)
		case errors.Is(err, common.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			h.internalError(r.Context(), w, "login", err)
		}
		return
	}

	_ = writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: common.BearerScheme,
		ExpiresIn: int64(h.users.AccessTokenValidity().Seconds()),
	})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}
	_ = writeJSON(w, http.StatusOK, meResponse{UserID: userID})
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

func (h *handlers) validateRequest(w http.ResponseWriter, req any) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Email" && fe.Tag() != "required" {
				writeError(w, http.StatusBadRequest, msgInvalidEmail)
				return false
			}
		}
	}
	writeError(w, http.StatusBadRequest, msgCredentialsRequired)
	return false
}

func (h *handlers) internalError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.Error(ctx, op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}
