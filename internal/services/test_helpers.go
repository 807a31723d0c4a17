package services

import (
	"context"
	"time"

	"github.com/mrossig/vidriera/internal/billing"
	"github.com/mrossig/vidriera/internal/models"
)

// Function-field mocks. Unset fields panic on use, which points straight at
// the test that forgot to stub a call.

type MockUserRepository struct {
	GetByIDFunc         func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	GetByOAuthIDFunc    func(ctx context.Context, oauthID string) (*models.User, error)
	CreateFunc          func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateLastLoginFunc func(ctx context.Context, id string, at time.Time) error
	UpdatePlanFunc      func(ctx context.Context, id, planID string) error
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *MockUserRepository) GetByOAuthID(ctx context.Context, oauthID string) (*models.User, error) {
	return m.GetByOAuthIDFunc(ctx, oauthID)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return m.CreateFunc(ctx, user)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.UpdateLastLoginFunc(ctx, id, at)
}

func (m *MockUserRepository) UpdatePlan(ctx context.Context, id, planID string) error {
	return m.UpdatePlanFunc(ctx, id, planID)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type MockEmailService struct {
	SendWelcomeEmailFunc func(ctx context.Context, email, name string) error
}

func (m *MockEmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	if m.SendWelcomeEmailFunc == nil {
		return nil
	}
	return m.SendWelcomeEmailFunc(ctx, email, name)
}

type MockBillingProvider struct {
	CreateSubscriptionFunc func(ctx context.Context, req billing.CreateRequest) (*billing.ProviderSubscription, error)
	GetSubscriptionFunc    func(ctx context.Context, providerID string) (*billing.ProviderSubscription, error)
	CancelSubscriptionFunc func(ctx context.Context, providerID string) error
}

func (m *MockBillingProvider) CreateSubscription(ctx context.Context, req billing.CreateRequest) (*billing.ProviderSubscription, error) {
	return m.CreateSubscriptionFunc(ctx, req)
}

func (m *MockBillingProvider) GetSubscription(ctx context.Context, providerID string) (*billing.ProviderSubscription, error) {
	return m.GetSubscriptionFunc(ctx, providerID)
}

func (m *MockBillingProvider) CancelSubscription(ctx context.Context, providerID string) error {
	return m.CancelSubscriptionFunc(ctx, providerID)
}

type MockSubscriptionRepository struct {
	CreateFunc              func(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	GetCurrentByUserFunc    func(ctx context.Context, userID string) (*models.Subscription, error)
	GetByProviderIDFunc     func(ctx context.Context, providerID string) (*models.Subscription, error)
	SetProviderFunc         func(ctx context.Context, id, providerID, initPoint string) error
	UpdateStatusFunc        func(ctx context.Context, id, status string) error
	UpdateStatusAndPlanFunc func(ctx context.Context, id, status, userID, planID string) error
	ListPendingFunc         func(ctx context.Context, limit int) ([]*models.Subscription, error)
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	return m.CreateFunc(ctx, sub)
}

func (m *MockSubscriptionRepository) GetCurrentByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	return m.GetCurrentByUserFunc(ctx, userID)
}

func (m *MockSubscriptionRepository) GetByProviderID(ctx context.Context, providerID string) (*models.Subscription, error) {
	return m.GetByProviderIDFunc(ctx, providerID)
}

func (m *MockSubscriptionRepository) SetProvider(ctx context.Context, id, providerID, initPoint string) error {
	return m.SetProviderFunc(ctx, id, providerID, initPoint)
}

func (m *MockSubscriptionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return m.UpdateStatusFunc(ctx, id, status)
}

func (m *MockSubscriptionRepository) UpdateStatusAndPlan(ctx context.Context, id, status, userID, planID string) error {
	return m.UpdateStatusAndPlanFunc(ctx, id, status, userID, planID)
}

func (m *MockSubscriptionRepository) ListPending(ctx context.Context, limit int) ([]*models.Subscription, error) {
	return m.ListPendingFunc(ctx, limit)
}

type MockPlanRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.Plan, error)
	ListFunc    func(ctx context.Context) ([]*models.Plan, error)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockPlanRepository) List(ctx context.Context) ([]*models.Plan, error) {
	return m.ListFunc(ctx)
}

type MockBusinessRepository struct {
	CreateFunc     func(ctx context.Context, business *models.Business) (*models.Business, error)
	GetByIDFunc    func(ctx context.Context, id, userID string) (*models.Business, error)
	ListByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*models.Business, error)
	UpdateFunc     func(ctx context.Context, business *models.Business) (*models.Business, error)
	DeleteFunc     func(ctx context.Context, id, userID string) error
}

func (m *MockBusinessRepository) Create(ctx context.Context, business *models.Business) (*models.Business, error) {
	return m.CreateFunc(ctx, business)
}

func (m *MockBusinessRepository) GetByID(ctx context.Context, id, userID string) (*models.Business, error) {
	return m.GetByIDFunc(ctx, id, userID)
}

func (m *MockBusinessRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Business, error) {
	return m.ListByUserFunc(ctx, userID, limit, offset)
}

func (m *MockBusinessRepository) Update(ctx context.Context, business *models.Business) (*models.Business, error) {
	return m.UpdateFunc(ctx, business)
}

func (m *MockBusinessRepository) Delete(ctx context.Context, id, userID string) error {
	return m.DeleteFunc(ctx, id, userID)
}

type MockSiteRepository struct {
	CreateFunc         func(ctx context.Context, site *models.Site) (*models.Site, error)
	GetByIDFunc        func(ctx context.Context, id, userID string) (*models.Site, error)
	GetByBusinessFunc  func(ctx context.Context, businessID, userID string) (*models.Site, error)
	GetBySubdomainFunc func(ctx context.Context, subdomain string) (*models.Site, error)
	UpdateFunc         func(ctx context.Context, site *models.Site, userID string) (*models.Site, error)
	DeleteFunc         func(ctx context.Context, id, userID string) error
}

func (m *MockSiteRepository) Create(ctx context.Context, site *models.Site) (*models.Site, error) {
	return m.CreateFunc(ctx, site)
}

func (m *MockSiteRepository) GetByID(ctx context.Context, id, userID string) (*models.Site, error) {
	return m.GetByIDFunc(ctx, id, userID)
}

func (m *MockSiteRepository) GetByBusiness(ctx context.Context, businessID, userID string) (*models.Site, error) {
	return m.GetByBusinessFunc(ctx, businessID, userID)
}

func (m *MockSiteRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Site, error) {
	return m.GetBySubdomainFunc(ctx, subdomain)
}

func (m *MockSiteRepository) Update(ctx context.Context, site *models.Site, userID string) (*models.Site, error) {
	return m.UpdateFunc(ctx, site, userID)
}

func (m *MockSiteRepository) Delete(ctx context.Context, id, userID string) error {
	return m.DeleteFunc(ctx, id, userID)
}

type MockContactRepository struct {
	CreateFunc     func(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByIDFunc    func(ctx context.Context, id, userID string) (*models.Contact, error)
	ListByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error)
	UpdateFunc     func(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	DeleteFunc     func(ctx context.Context, id, userID string) error
}

func (m *MockContactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	return m.CreateFunc(ctx, contact)
}

func (m *MockContactRepository) GetByID(ctx context.Context, id, userID string) (*models.Contact, error) {
	return m.GetByIDFunc(ctx, id, userID)
}

func (m *MockContactRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error) {
	return m.ListByUserFunc(ctx, userID, limit, offset)
}

func (m *MockContactRepository) Update(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	return m.UpdateFunc(ctx, contact)
}

func (m *MockContactRepository) Delete(ctx context.Context, id, userID string) error {
	return m.DeleteFunc(ctx, id, userID)
}

type MockInteractionRepository struct {
	CreateFunc        func(ctx context.Context, interaction *models.Interaction) (*models.Interaction, error)
	ListByContactFunc func(ctx context.Context, contactID, userID string, limit, offset int) ([]*models.Interaction, error)
	DeleteFunc        func(ctx context.Context, id, userID string) error
}

func (m *MockInteractionRepository) Create(ctx context.Context, interaction *models.Interaction) (*models.Interaction, error) {
	return m.CreateFunc(ctx, interaction)
}

func (m *MockInteractionRepository) ListByContact(ctx context.Context, contactID, userID string, limit, offset int) ([]*models.Interaction, error) {
	return m.ListByContactFunc(ctx, contactID, userID, limit, offset)
}

func (m *MockInteractionRepository) Delete(ctx context.Context, id, userID string) error {
	return m.DeleteFunc(ctx, id, userID)
}

type MockActivityRepository struct {
	CreateFunc     func(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	GetByIDFunc    func(ctx context.Context, id, userID string) (*models.Activity, error)
	ListByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, error)
	UpdateFunc     func(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	DeleteFunc     func(ctx context.Context, id, userID string) error
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	return m.CreateFunc(ctx, activity)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id, userID string) (*models.Activity, error) {
	return m.GetByIDFunc(ctx, id, userID)
}

func (m *MockActivityRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, error) {
	return m.ListByUserFunc(ctx, userID, limit, offset)
}

func (m *MockActivityRepository) Update(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	return m.UpdateFunc(ctx, activity)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id, userID string) error {
	return m.DeleteFunc(ctx, id, userID)
}

// NewTestUser builds a password-provider user for tests.
func NewTestUser(id, email, name string) *models.User {
	e := email
	return &models.User{
		ID:        id,
		Name:      name,
		Email:     &e,
		Provider:  models.ProviderEmail,
		PlanID:    models.DefaultPlanID,
		CreatedAt: time.Now(),
	}
}
