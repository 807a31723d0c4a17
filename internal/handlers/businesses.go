package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	pkghttp "github.com/mrossig/vidriera/pkg/http"
)

// BusinessServiceInterface is the business-profile logic behind the handler.
type BusinessServiceInterface interface {
	Create(ctx context.Context, business *models.Business) (*models.Business, error)
	Get(ctx context.Context, id, userID string) (*models.Business, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Business, error)
	Update(ctx context.Context, business *models.Business) (*models.Business, error)
	Delete(ctx context.Context, id, userID string) error
}

type BusinessHandler struct {
	service BusinessServiceInterface
	env     string
}

func NewBusinessHandler(service BusinessServiceInterface, env string) *BusinessHandler {
	return &BusinessHandler{service: service, env: env}
}

type BusinessRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=80"`
	Phone       string `json:"phone" validate:"max=40"`
	Address     string `json:"address" validate:"max=200"`
}

// Create handles POST /businesses
func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req BusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	business := &models.Business{
		UserID:      claims.UserID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Phone:       req.Phone,
		Address:     req.Address,
	}

	created, err := h.service.Create(r.Context(), business)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"business": created,
	})
}

// Get handles GET /businesses/{id}
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	business, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"business": business,
	})
}

// List handles GET /businesses
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	limit, offset := paginationParams(r)
	businesses, err := h.service.List(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"businesses": businesses,
	})
}

// Update handles PUT /businesses/{id}
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req BusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	business := &models.Business{
		ID:          chi.URLParam(r, "id"),
		UserID:      claims.UserID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Phone:       req.Phone,
		Address:     req.Address,
	}

	updated, err := h.service.Update(r.Context(), business)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"business": updated,
	})
}

// Delete handles DELETE /businesses/{id}
func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		"message": "business deleted",
	})
}

// paginationParams reads limit/offset query params. Bad values fall back to
// defaults rather than erroring.
func paginationParams(r *http.Request) (limit, offset int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
