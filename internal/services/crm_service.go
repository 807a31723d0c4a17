package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mrossig/vidriera/internal/models"
)

// ContactRepository is the storage surface for CRM contacts.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, id, userID string) (*models.Contact, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id, userID string) error
}

// InteractionRepository logs contact touchpoints.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *models.Interaction) (*models.Interaction, error)
	ListByContact(ctx context.Context, contactID, userID string, limit, offset int) ([]*models.Interaction, error)
	Delete(ctx context.Context, id, userID string) error
}

// ActivityRepository persists to-do items.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	GetByID(ctx context.Context, id, userID string) (*models.Activity, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	Delete(ctx context.Context, id, userID string) error
}

var interactionKinds = map[string]bool{
	models.InteractionCall:    true,
	models.InteractionEmail:   true,
	models.InteractionMeeting: true,
	models.InteractionNote:    true,
}

// CRMService covers contacts, interactions and activities. All operations
// are scoped to the authenticated owner.
type CRMService struct {
	contacts     ContactRepository
	interactions InteractionRepository
	activities   ActivityRepository
	logger       *slog.Logger
}

func NewCRMService(contacts ContactRepository, interactions InteractionRepository, activities ActivityRepository, logger *slog.Logger) *CRMService {
	return &CRMService{
		contacts:     contacts,
		interactions: interactions,
		activities:   activities,
		logger:       logger,
	}
}

// Contacts

func (s *CRMService) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return nil, models.NewValidationError("contact name is required")
	}

	created, err := s.contacts.Create(ctx, contact)
	if err != nil {
		s.logger.Error("failed to create contact", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return created, nil
}

func (s *CRMService) GetContact(ctx context.Context, id, userID string) (*models.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("contact not found")
		}
		s.logger.Error("failed to get contact", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return contact, nil
}

func (s *CRMService) ListContacts(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error) {
	contacts, err := s.contacts.ListByUser(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		s.logger.Error("failed to list contacts", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return contacts, nil
}

func (s *CRMService) UpdateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return nil, models.NewValidationError("contact name is required")
	}

	updated, err := s.contacts.Update(ctx, contact)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("contact not found")
		}
		s.logger.Error("failed to update contact", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return updated, nil
}

func (s *CRMService) DeleteContact(ctx context.Context, id, userID string) error {
	if err := s.contacts.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFound("contact not found")
		}
		s.logger.Error("failed to delete contact", slog.Any("error", err))
		return models.NewServerError("internal server error")
	}
	return nil
}

// Interactions

func (s *CRMService) RecordInteraction(ctx context.Context, interaction *models.Interaction) (*models.Interaction, error) {
	if !interactionKinds[interaction.Kind] {
		return nil, models.NewValidationError("interaction kind must be one of: call, email, meeting, note")
	}

	// The contact lookup doubles as the ownership check
	if _, err := s.GetContact(ctx, interaction.ContactID, interaction.UserID); err != nil {
		return nil, err
	}

	created, err := s.interactions.Create(ctx, interaction)
	if err != nil {
		s.logger.Error("failed to record interaction", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return created, nil
}

func (s *CRMService) ListInteractions(ctx context.Context, contactID, userID string, limit, offset int) ([]*models.Interaction, error) {
	if _, err := s.GetContact(ctx, contactID, userID); err != nil {
		return nil, err
	}

	interactions, err := s.interactions.ListByContact(ctx, contactID, userID, normalizeLimit(limit), offset)
	if err != nil {
		s.logger.Error("failed to list interactions", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return interactions, nil
}

func (s *CRMService) DeleteInteraction(ctx context.Context, id, userID string) error {
	if err := s.interactions.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFound("interaction not found")
		}
		s.logger.Error("failed to delete interaction", slog.Any("error", err))
		return models.NewServerError("internal server error")
	}
	return nil
}

// Activities

func (s *CRMService) CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	activity.Title = strings.TrimSpace(activity.Title)
	if activity.Title == "" {
		return nil, models.NewValidationError("activity title is required")
	}

	if activity.ContactID != nil {
		if _, err := s.GetContact(ctx, *activity.ContactID, activity.UserID); err != nil {
			return nil, err
		}
	}

	created, err := s.activities.Create(ctx, activity)
	if err != nil {
		s.logger.Error("failed to create activity", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return created, nil
}

func (s *CRMService) ListActivities(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, error) {
	activities, err := s.activities.ListByUser(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		s.logger.Error("failed to list activities", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return activities, nil
}

// SetActivityDone toggles completion.
func (s *CRMService) SetActivityDone(ctx context.Context, id, userID string, done bool) (*models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("activity not found")
		}
		s.logger.Error("failed to get activity", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	activity.Done = done
	updated, err := s.activities.Update(ctx, activity)
	if err != nil {
		s.logger.Error("failed to update activity", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return updated, nil
}

func (s *CRMService) DeleteActivity(ctx context.Context, id, userID string) error {
	if err := s.activities.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFound("activity not found")
		}
		s.logger.Error("failed to delete activity", slog.Any("error", err))
		return models.NewServerError("internal server error")
	}
	return nil
}
