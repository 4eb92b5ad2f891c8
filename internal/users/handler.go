package users

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Handler wires HTTP endpoints for user management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	verifier  *auth.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, verifier *auth.Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		verifier:  verifier,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/users", h.create)
	r.Get("/users", h.list)
	r.Get("/users/{id}", h.get)
	r.Patch("/users/{id}", h.update)
	r.Delete("/users/{id}", h.remove)
}

// authenticate resolves the request's claimed credentials against the
// stored hash and returns the canonical authenticated username. Every
// request pays the full bcrypt check; there is no session shortcut.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	creds := auth.CredentialsFromRequest(r)
	ok, err := h.verifier.Verify(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.logger.Error("verify credentials", slog.Any("error", err))
		httpx.RespondError(w, err)
		return "", false
	}
	if !ok {
		httpx.RespondError(w, fmt.Errorf("invalid username or password: %w", httpx.ErrUnauthorized))
		return "", false
	}
	username, _ := auth.NormalizeUsername(creds.Username)
	return username, true
}

type createUserRequest struct {
	ID       string `json:"id"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Enabled  *bool  `json:"enabled"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("malformed body: %w", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%s: %w", err.Error(), httpx.ErrValidation))
		return
	}

	user, err := h.service.Create(r.Context(), CreateUserInput{
		ID:       req.ID,
		Username: req.Username,
		Password: req.Password,
		Enabled:  req.Enabled,
	})
	if err != nil {
		h.logger.Warn("create user failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user.Profile())
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	records, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	profiles := make([]Profile, 0, len(records))
	for _, u := range records {
		profiles = append(profiles, u.Profile())
	}
	httpx.JSON(w, http.StatusOK, profiles)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	user, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.Profile())
}

type updateUserRequest struct {
	Password *string `json:"password"`
	Enabled  *bool   `json:"enabled"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	authUsername, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("malformed body: %w", httpx.ErrValidation))
		return
	}
	user, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateUserInput{
		Password: req.Password,
		Enabled:  req.Enabled,
	}, authUsername)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.Profile())
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	authUsername, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), authUsername); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
