package posts

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Handler wires HTTP endpoints for posts.
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

// MountRoutes registers post routes on the provided router. The two list
// routes live under /users for compatibility with the original API.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/posts", h.create)
	r.Patch("/posts/{id}", h.update)
	r.Delete("/posts/{id}", h.remove)
	r.Get("/users/posts", h.listAll)
	r.Get("/users/{id}/posts", h.listByUser)
}

// authenticate mirrors the users handler: full re-verification on every
// request. The failure sentinel is answered when credentials do not
// verify; most endpoints use Unauthorized, /users/posts keeps its
// historical Forbidden answer.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, failure error) (string, bool) {
	creds := auth.CredentialsFromRequest(r)
	ok, err := h.verifier.Verify(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.logger.Error("verify credentials", slog.Any("error", err))
		httpx.RespondError(w, err)
		return "", false
	}
	if !ok {
		httpx.RespondError(w, fmt.Errorf("invalid username or password: %w", failure))
		return "", false
	}
	username, _ := auth.NormalizeUsername(creds.Username)
	return username, true
}

type createPostRequest struct {
	ID        string `json:"id"`
	Title     string `json:"title" validate:"required"`
	CreatedAt *int64 `json:"created_at"`
	Username  string `json:"username" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r, httpx.ErrUnauthorized); !ok {
		return
	}
	var req createPostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("malformed body: %w", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%s: %w", err.Error(), httpx.ErrValidation))
		return
	}

	post, err := h.service.Create(r.Context(), CreatePostInput{
		ID:             req.ID,
		Title:          req.Title,
		CreatedAt:      req.CreatedAt,
		AuthorUsername: req.Username,
	})
	if err != nil {
		h.logger.Warn("create post failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}

type updatePostRequest struct {
	Title *string `json:"title"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	authUsername, ok := h.authenticate(w, r, httpx.ErrUnauthorized)
	if !ok {
		return
	}
	var req updatePostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("malformed body: %w", httpx.ErrValidation))
		return
	}
	post, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdatePostInput{Title: req.Title}, authUsername)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	authUsername, ok := h.authenticate(w, r, httpx.ErrUnauthorized)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), authUsername); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	// Historical quirk kept on purpose: this endpoint answers 403, not
	// 401, when credentials do not verify.
	if _, ok := h.authenticate(w, r, httpx.ErrForbidden); !ok {
		return
	}
	records, err := h.service.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list posts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if records == nil {
		records = []Post{}
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r, httpx.ErrUnauthorized); !ok {
		return
	}
	records, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("list posts by user failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if records == nil {
		records = []Post{}
	}
	httpx.JSON(w, http.StatusOK, records)
}
