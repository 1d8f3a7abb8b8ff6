package shortener

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sundayezeilo/shortlinks/internal/errx"
	"github.com/sundayezeilo/shortlinks/internal/httpx"
	"github.com/sundayezeilo/shortlinks/internal/identity"
)

// HTTPCreateLinkRequest represents the JSON request body for creating a link.
type HTTPCreateLinkRequest struct {
	URL       string `json:"url" validate:"required,max=2048"`
	ShortCode string `json:"shortCode,omitempty" validate:"omitempty,min=3,max=20"`
}

// HTTPUpdateLinkRequest is the PATCH body. Absent fields are left unchanged.
type HTTPUpdateLinkRequest struct {
	URL       *string `json:"url,omitempty" validate:"omitempty,max=2048"`
	ShortCode *string `json:"shortCode,omitempty" validate:"omitempty,max=20"`
}

// LinkResponse is the public JSON form of a Link.
type LinkResponse struct {
	ID          int64  `json:"id"`
	ShortCode   string `json:"shortCode"`
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// DeleteLinkResponse confirms a removal.
type DeleteLinkResponse struct {
	Deleted bool `json:"deleted"`
}

// Handler provides HTTP handlers for the link service.
type Handler struct {
	service Service
	logger  *slog.Logger
	baseURL string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	BaseURL string // Base URL for constructing short URLs (e.g., "https://short.ly")
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (h *Handler) toResponse(link Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		ShortURL:    h.baseURL + "/" + link.ShortCode,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   link.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// owner returns the authenticated owner or answers 401 itself.
func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := identity.OwnerFrom(r.Context())
	if !ok {
		httpx.WriteFailure(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return ownerID, true
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	req, err := httpx.DecodeAndValidate[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "invalid create request", "error", err.Error())
		httpx.WriteFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := h.service.Create(ctx, CreateLinkRequest{
		OwnerID:     ownerID,
		OriginalURL: req.URL,
		CustomCode:  req.ShortCode,
	})
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "link created",
		"link_id", link.ID,
		"short_code", link.ShortCode,
		"custom_code", req.ShortCode != "",
	)
	httpx.WriteData(w, http.StatusCreated, h.toResponse(link))
}

// ListLinks handles GET /api/links.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	links, err := h.service.ListByOwner(ctx, ownerID)
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	resp := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, h.toResponse(link))
	}
	httpx.WriteData(w, http.StatusOK, resp)
}

// UpdateLink handles PATCH /api/links/{id}.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.WriteFailure(w, http.StatusNotFound, "link not found")
		return
	}

	req, err := httpx.DecodeAndValidate[HTTPUpdateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "invalid update request", "error", err.Error())
		httpx.WriteFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	link, found, err := h.service.Update(ctx, UpdateLinkRequest{
		ID:          id,
		OwnerID:     ownerID,
		OriginalURL: req.URL,
		ShortCode:   req.ShortCode,
	})
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}
	if !found {
		httpx.WriteFailure(w, http.StatusNotFound, "link not found")
		return
	}

	logger.InfoContext(ctx, "link updated", "link_id", link.ID, "short_code", link.ShortCode)
	httpx.WriteData(w, http.StatusOK, h.toResponse(link))
}

// DeleteLink handles DELETE /api/links/{id}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	id, ok := parseID(r.PathValue("id"))
	if !ok {
		httpx.WriteFailure(w, http.StatusNotFound, "link not found")
		return
	}

	deleted, err := h.service.Delete(ctx, id, ownerID)
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}
	if !deleted {
		httpx.WriteFailure(w, http.StatusNotFound, "link not found")
		return
	}

	logger.InfoContext(ctx, "link deleted", "link_id", id)
	httpx.WriteData(w, http.StatusOK, DeleteLinkResponse{Deleted: true})
}

// ResolveLink handles GET /{code} and redirects to the stored URL.
func (h *Handler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	// cannot exist, skip the lookup
	if !ValidShortCode(code) {
		httpx.WriteFailure(w, http.StatusNotFound, "link not found")
		return
	}

	link, found, err := h.service.LookupByCode(ctx, code)
	if err != nil {
		h.writeServiceError(ctx, h.requestLogger(r), w, err)
		return
	}
	if !found {
		httpx.WriteFailure(w, http.StatusNotFound, "link not found")
		return
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusTemporaryRedirect)
}

// writeServiceError logs err at a level matching its kind and writes the
// failure envelope.
func (h *Handler) writeServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind.String(),
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Invalid, errx.Conflict:
		logger.WarnContext(ctx, "link request rejected", logAttrs...)
	default:
		logger.ErrorContext(ctx, "link request failed", logAttrs...)
	}

	httpx.WriteError(w, err)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
