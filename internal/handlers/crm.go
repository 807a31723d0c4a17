package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	pkghttp "github.com/mrossig/vidriera/pkg/http"
)

// CRMServiceInterface is the contact/interaction/activity logic behind the
// handler.
type CRMServiceInterface interface {
	CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetContact(ctx context.Context, id, userID string) (*models.Contact, error)
	ListContacts(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	DeleteContact(ctx context.Context, id, userID string) error
	RecordInteraction(ctx context.Context, interaction *models.Interaction) (*models.Interaction, error)
	ListInteractions(ctx context.Context, contactID, userID string, limit, offset int) ([]*models.Interaction, error)
	DeleteInteraction(ctx context.Context, id, userID string) error
	CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	ListActivities(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, error)
	SetActivityDone(ctx context.Context, id, userID string, done bool) (*models.Activity, error)
	DeleteActivity(ctx context.Context, id, userID string) error
}

type CRMHandler struct {
	service CRMServiceInterface
	env     string
}

func NewCRMHandler(service CRMServiceInterface, env string) *CRMHandler {
	return &CRMHandler{service: service, env: env}
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=40"`
	Company string `json:"company" validate:"max=120"`
	Notes   string `json:"notes" validate:"max=5000"`
}

type InteractionRequest struct {
	Kind       string     `json:"kind" validate:"required"`
	Summary    string     `json:"summary" validate:"required,max=2000"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type ActivityRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	ContactID *string    `json:"contact_id"`
	DueAt     *time.Time `json:"due_at"`
}

type ActivityDoneRequest struct {
	Done bool `json:"done"`
}

// CreateContact handles POST /contacts
func (h *CRMHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	contact, err := h.service.CreateContact(r.Context(), &models.Contact{
		UserID:  claims.UserID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"contact": contact,
	})
}

// GetContact handles GET /contacts/{id}
func (h *CRMHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	contact, err := h.service.GetContact(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"contact": contact,
	})
}

// ListContacts handles GET /contacts
func (h *CRMHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	limit, offset := paginationParams(r)
	contacts, err := h.service.ListContacts(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"contacts": contacts,
	})
}

// UpdateContact handles PUT /contacts/{id}
func (h *CRMHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	contact, err := h.service.UpdateContact(r.Context(), &models.Contact{
		ID:      chi.URLParam(r, "id"),
		UserID:  claims.UserID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"contact": contact,
	})
}

// DeleteContact handles DELETE /contacts/{id}
func (h *CRMHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.DeleteContact(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "contact deleted",
	})
}

// RecordInteraction handles POST /contacts/{id}/interactions
func (h *CRMHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	interaction := &models.Interaction{
		ContactID: chi.URLParam(r, "id"),
		UserID:    claims.UserID,
		Kind:      req.Kind,
		Summary:   req.Summary,
	}
	if req.OccurredAt != nil {
		interaction.OccurredAt = *req.OccurredAt
	}

	created, err := h.service.RecordInteraction(r.Context(), interaction)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"interaction": created,
	})
}

// ListInteractions handles GET /contacts/{id}/interactions
func (h *CRMHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	limit, offset := paginationParams(r)
	interactions, err := h.service.ListInteractions(r.Context(), chi.URLParam(r, "id"), claims.UserID, limit, offset)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"interactions": interactions,
	})
}

// DeleteInteraction handles DELETE /interactions/{id}
func (h *CRMHandler) DeleteInteraction(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.DeleteInteraction(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "interaction deleted",
	})
}

// CreateActivity handles POST /activities
func (h *CRMHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), &models.Activity{
		UserID:    claims.UserID,
		ContactID: req.ContactID,
		Title:     req.Title,
		DueAt:     req.DueAt,
	})
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"activity": activity,
	})
}

// ListActivities handles GET /activities
func (h *CRMHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	limit, offset := paginationParams(r)
	activities, err := h.service.ListActivities(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"activities": activities,
	})
}

// SetActivityDone handles PATCH /activities/{id}/done
func (h *CRMHandler) SetActivityDone(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ActivityDoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	activity, err := h.service.SetActivityDone(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.Done)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"activity": activity,
	})
}

// DeleteActivity handles DELETE /activities/{id}
func (h *CRMHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.DeleteActivity(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "activity deleted",
	})
}
