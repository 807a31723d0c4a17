package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mrossig/vidriera/internal/models"
)

// Subdomains are DNS labels: lowercase alphanumerics and inner hyphens.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// SiteRepository is the storage surface for builder sites.
type SiteRepository interface {
	Create(ctx context.Context, site *models.Site) (*models.Site, error)
	GetByID(ctx context.Context, id, userID string) (*models.Site, error)
	GetByBusiness(ctx context.Context, businessID, userID string) (*models.Site, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Site, error)
	Update(ctx context.Context, site *models.Site, userID string) (*models.Site, error)
	Delete(ctx context.Context, id, userID string) error
}

type SiteService struct {
	repo       SiteRepository
	businesses BusinessRepository
	logger     *slog.Logger
}

func NewSiteService(repo SiteRepository, businesses BusinessRepository, logger *slog.Logger) *SiteService {
	return &SiteService{repo: repo, businesses: businesses, logger: logger}
}

// Create attaches a site to one of the caller's businesses. The subdomain
// unique constraint is the authority on collisions.
func (s *SiteService) Create(ctx context.Context, site *models.Site, userID string) (*models.Site, error) {
	site.Subdomain = strings.ToLower(strings.TrimSpace(site.Subdomain))
	if !subdomainPattern.MatchString(site.Subdomain) {
		return nil, models.NewValidationError("subdomain must be a valid DNS label")
	}

	if _, err := s.businesses.GetByID(ctx, site.BusinessID, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("business not found")
		}
		s.logger.Error("failed to verify business ownership", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	created, err := s.repo.Create(ctx, site)
	if err != nil {
		if errors.Is(err, models.ErrBusinessHasSite) {
			return nil, models.NewConflict("business already has a site")
		}
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewConflict("subdomain already taken")
		}
		s.logger.Error("failed to create site", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return created, nil
}

func (s *SiteService) Get(ctx context.Context, id, userID string) (*models.Site, error) {
	site, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("site not found")
		}
		s.logger.Error("failed to get site", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return site, nil
}

// GetForBusiness returns the site attached to one of the caller's businesses.
func (s *SiteService) GetForBusiness(ctx context.Context, businessID, userID string) (*models.Site, error) {
	site, err := s.repo.GetByBusiness(ctx, businessID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("site not found")
		}
		s.logger.Error("failed to get site for business", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return site, nil
}

// GetPublic serves the render path: only published sites resolve.
func (s *SiteService) GetPublic(ctx context.Context, subdomain string) (*models.Site, error) {
	site, err := s.repo.GetBySubdomain(ctx, strings.ToLower(subdomain))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("site not found")
		}
		s.logger.Error("failed to get site by subdomain", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	if !site.Published {
		return nil, models.NewNotFound("site not found")
	}
	return site, nil
}

// UpdateDocuments replaces the style and/or content documents.
func (s *SiteService) UpdateDocuments(ctx context.Context, id, userID string, style, content json.RawMessage) (*models.Site, error) {
	site, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if style != nil {
		site.Style = style
	}
	if content != nil {
		site.Content = content
	}

	updated, err := s.repo.Update(ctx, site, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("site not found")
		}
		s.logger.Error("failed to update site", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return updated, nil
}

// SetPublished toggles public visibility.
func (s *SiteService) SetPublished(ctx context.Context, id, userID string, published bool) (*models.Site, error) {
	site, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	site.Published = published
	updated, err := s.repo.Update(ctx, site, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("site not found")
		}
		s.logger.Error("failed to update site", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return updated, nil
}

func (s *SiteService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFound("site not found")
		}
		s.logger.Error("failed to delete site", slog.Any("error", err))
		return models.NewServerError("internal server error")
	}
	return nil
}
