package api

import (
	"net/http"

	"github.com/taskdesk/taskdesk-api/internal/pipeline"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	runner Runner
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(runner Runner) *AuthHandler {
	return &AuthHandler{runner: runner}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := newRequest(w, r, pipeline.Register)
	if err != nil {
		handleError(w, r, nil, err)
		return
	}

	res, err := h.runner.Run(r.Context(), req)
	if err != nil {
		handleError(w, r, res, err)
		return
	}

	respondWithResult(w, r, res, http.StatusCreated, RegisterResponse{
		Message: "User registered",
		User:    newUserResponse(res.User),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := newRequest(w, r, pipeline.Login)
	if err != nil {
		handleError(w, r, nil, err)
		return
	}

	res, err := h.runner.Run(r.Context(), req)
	if err != nil {
		handleError(w, r, res, err)
		return
	}

	respondWithResult(w, r, res, http.StatusOK, newLoginResponse(res.Token))
}
