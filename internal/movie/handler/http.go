package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/moviestack/moviestack/internal/movie/service"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/interfaces"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Server exposes the movie service over HTTP.
type Server struct {
	service *service.MovieService
	logger  interfaces.Logger
	router  chi.Router
}

// NewServer constructs the movie HTTP server with base middleware and routes.
func NewServer(svc *service.MovieService, logger interfaces.Logger) *Server {
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
	s.router.Route("/movie", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/get/{id}", s.handleGet)
		r.Post("/new", s.handleCreate)
		r.Post("/update", s.handleUpdate)
		r.Get("/delete/{id}", s.handleDelete)
		r.Get("/like/{movieId}/{account}", s.handleLike)
		r.Get("/unlike/{movieId}/{account}", s.handleUnlike)
		r.Get("/hasliked/{movieId}/{account}", s.handleHasLiked)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type movieRequest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Creator     string    `json:"creator"`
	ReleaseDate time.Time `json:"release_date"`
	Genre       string    `json:"genre"`
	Revision    int64     `json:"revision"`
}

type likedResponse struct {
	MovieID string `json:"movie_id"`
	Account string `json:"account"`
	Liked   bool   `json:"liked"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 0
	if val := query.Get("page"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			s.respondError(w, errors.Validation("invalid page value"))
			return
		}
		page = parsed
	}

	ascending := true
	if val := query.Get("order"); val != "" {
		ascending = val != "desc"
	}

	result, err := s.service.SearchMovies(r.Context(), query.Get("text"), page, query.Get("sort"), ascending)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, errors.Validation("invalid movie id"))
		return
	}

	movie, err := s.service.GetMovie(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if !s.decode(w, r, &req) {
		return
	}
	// Ids are assigned on create, never supplied.
	if req.ID != "" {
		s.respondError(w, errors.Validation("movie id must not be set on create"))
		return
	}

	movie, err := s.service.CreateMovie(r.Context(), req.Creator, service.MovieFields{
		Title:       req.Title,
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Genre:       req.Genre,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, movie)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		s.respondError(w, errors.Validation("invalid movie id"))
		return
	}

	movie, err := s.service.UpdateMovie(r.Context(), id, req.Revision, req.Creator, service.MovieFields{
		Title:       req.Title,
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Genre:       req.Genre,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, errors.Validation("invalid movie id"))
		return
	}

	revision, err := strconv.ParseInt(r.URL.Query().Get("revision"), 10, 64)
	if err != nil {
		s.respondError(w, errors.Validation("invalid revision value"))
		return
	}

	if err := s.service.DeleteMovie(r.Context(), id, revision); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	movieID, account, ok := s.likeParams(w, r)
	if !ok {
		return
	}

	if err := s.service.LikeMovie(r.Context(), movieID, account); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, likedResponse{MovieID: movieID.String(), Account: account, Liked: true})
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	movieID, account, ok := s.likeParams(w, r)
	if !ok {
		return
	}

	if err := s.service.UnlikeMovie(r.Context(), movieID, account); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, likedResponse{MovieID: movieID.String(), Account: account, Liked: false})
}

func (s *Server) handleHasLiked(w http.ResponseWriter, r *http.Request) {
	movieID, account, ok := s.likeParams(w, r)
	if !ok {
		return
	}

	liked, err := s.service.HasLiked(r.Context(), movieID, account)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, likedResponse{MovieID: movieID.String(), Account: account, Liked: liked})
}

func (s *Server) likeParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	movieID, err := uuid.Parse(chi.URLParam(r, "movieId"))
	if err != nil {
		s.respondError(w, errors.Validation("invalid movie id"))
		return uuid.Nil, "", false
	}
	account := chi.URLParam(r, "account")
	if account == "" {
		s.respondError(w, errors.Validation("account is required"))
		return uuid.Nil, "", false
	}
	return movieID, account, true
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
	}
	s.respondJSON(w, status, errorResponse{Code: code, Message: userMessage(err, status)})
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

func userMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
