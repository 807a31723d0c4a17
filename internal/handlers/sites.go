package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	pkghttp "github.com/mrossig/vidriera/pkg/http"
)

// SiteServiceInterface is the site-builder logic behind the handler.
type SiteServiceInterface interface {
	Create(ctx context.Context, site *models.Site, userID string) (*models.Site, error)
	Get(ctx context.Context, id, userID string) (*models.Site, error)
	GetForBusiness(ctx context.Context, businessID, userID string) (*models.Site, error)
	GetPublic(ctx context.Context, subdomain string) (*models.Site, error)
	UpdateDocuments(ctx context.Context, id, userID string, style, content json.RawMessage) (*models.Site, error)
	SetPublished(ctx context.Context, id, userID string, published bool) (*models.Site, error)
	Delete(ctx context.Context, id, userID string) error
}

type SiteHandler struct {
	service SiteServiceInterface
	env     string
}

func NewSiteHandler(service SiteServiceInterface, env string) *SiteHandler {
	return &SiteHandler{service: service, env: env}
}

type CreateSiteRequest struct {
	BusinessID string          `json:"business_id" validate:"required"`
	Subdomain  string          `json:"subdomain" validate:"required"`
	Style      json.RawMessage `json:"style"`
	Content    json.RawMessage `json:"content"`
}

type UpdateSiteRequest struct {
	Style   json.RawMessage `json:"style"`
	Content json.RawMessage `json:"content"`
}

type PublishSiteRequest struct {
	Published bool `json:"published"`
}

// Create handles POST /sites
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	site := &models.Site{
		BusinessID: req.BusinessID,
		Subdomain:  req.Subdomain,
		Style:      req.Style,
		Content:    req.Content,
	}

	created, err := h.service.Create(r.Context(), site, claims.UserID)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"site":    created,
	})
}

// Get handles GET /sites/{id}
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	site, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"site":    site,
	})
}

// GetForBusiness handles GET /businesses/{id}/site
func (h *SiteHandler) GetForBusiness(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	site, err := h.service.GetForBusiness(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"site":    site,
	})
}

// GetPublic handles GET /public/sites/{subdomain}. No auth: this is what the
// rendered site fetches. Unpublished sites read as absent.
func (h *SiteHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.GetPublic(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"site":    site,
	})
}

// Update handles PUT /sites/{id}
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req UpdateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	site, err := h.service.UpdateDocuments(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.Style, req.Content)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"site":    site,
	})
}

// Publish handles PATCH /sites/{id}/publish
func (h *SiteHandler) Publish(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req PublishSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	site, err := h.service.SetPublished(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.Published)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"site":    site,
	})
}

// Delete handles DELETE /sites/{id}
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "site deleted",
	})
}
