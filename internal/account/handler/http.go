package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moviestack/moviestack/internal/account/service"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/interfaces"
	"github.com/moviestack/moviestack/pkg/model"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Server exposes the account service over HTTP.
type Server struct {
	service *service.AccountService
	logger  interfaces.Logger
	router  chi.Router
}

// NewServer constructs the account HTTP server with base middleware and routes.
func NewServer(svc *service.AccountService, logger interfaces.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		service: svc,
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

// Router returns the configured route tree.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/account", func(r chi.Router) {
		r.Get("/get/{username}", s.handleGet)
		r.Post("/auth", s.handleAuthenticate)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/new", s.handleCreate)
		r.Post("/update", s.handleUpdate)
		r.Get("/delete/{username}", s.handleDelete)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email_address"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	Account *model.Account    `json:"account"`
	Tokens  *model.AuthTokens `json:"tokens"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	account, err := s.service.GetAccount(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, account)
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	account, tokens, err := s.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, authResponse{Account: account, Tokens: tokens})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req) {
		return
	}

	tokens, err := s.service.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	account, err := s.service.CreateAccount(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, account)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	account, err := s.service.UpdateAccount(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, account)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteAccount(r.Context(), chi.URLParam(r, "username")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, errors.Validation("invalid request body"))
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", interfaces.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", interfaces.Error(err))
		s.respondJSON(w, status, errorResponse{Code: code, Message: "internal server error"})
		return
	}

	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	s.respondJSON(w, status, errorResponse{Code: code, Message: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.IsConflict(err):
		return http.StatusConflict, "CONFLICT"
	case errors.IsValidation(err):
		return http.StatusBadRequest, "VALIDATION"
	case errors.IsUnauthorized(err):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
