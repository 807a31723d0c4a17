// Package billing adapts the MercadoPago preapproval API to the provider
// interface the billing service consumes.
package billing

import (
	"context"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preapproval"

	appconfig "github.com/mrossig/vidriera/internal/config"
)

// ProviderSubscription is the provider-neutral view of a preapproval.
type ProviderSubscription struct {
	ID        string
	Status    string
	InitPoint string
}

// CreateRequest carries everything needed to open a recurring preapproval.
type CreateRequest struct {
	Reason            string
	ExternalReference string // local subscription id
	PayerEmail        string
	Amount            float64
	Currency          string
	BackURL           string
}

// MercadoPagoProvider drives subscriptions through the MercadoPago SDK.
type MercadoPagoProvider struct {
	client   preapproval.Client
	currency string
}

func NewMercadoPagoProvider(cfg *appconfig.BillingConfig) (*MercadoPagoProvider, error) {
	mpCfg, err := mpconfig.New(cfg.MercadoPagoAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mercadopago client: %w", err)
	}

	return &MercadoPagoProvider{
		client:   preapproval.NewClient(mpCfg),
		currency: cfg.Currency,
	}, nil
}

// CreateSubscription opens a monthly preapproval and returns the provider id
// and checkout URL.
func (p *MercadoPagoProvider) CreateSubscription(ctx context.Context, req CreateRequest) (*ProviderSubscription, error) {
	currency := req.Currency
	if currency == "" {
		currency = p.currency
	}

	resp, err := p.client.Create(ctx, preapproval.Request{
		Reason:            req.Reason,
		ExternalReference: req.ExternalReference,
		PayerEmail:        req.PayerEmail,
		BackURL:           req.BackURL,
		AutoRecurring: &preapproval.AutoRecurringRequest{
			Frequency:         1,
			FrequencyType:     "months",
			TransactionAmount: req.Amount,
			CurrencyID:        currency,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mercadopago preapproval create failed: %w", err)
	}

	return &ProviderSubscription{
		ID:        resp.ID,
		Status:    resp.Status,
		InitPoint: resp.InitPoint,
	}, nil
}

// GetSubscription fetches the current provider-side state of a preapproval.
func (p *MercadoPagoProvider) GetSubscription(ctx context.Context, providerID string) (*ProviderSubscription, error) {
	resp, err := p.client.Get(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago preapproval get failed: %w", err)
	}

	return &ProviderSubscription{
		ID:        resp.ID,
		Status:    resp.Status,
		InitPoint: resp.InitPoint,
	}, nil
}

// CancelSubscription cancels the preapproval on the provider side.
func (p *MercadoPagoProvider) CancelSubscription(ctx context.Context, providerID string) error {
	_, err := p.client.Update(ctx, providerID, preapproval.UpdateRequest{
		Status: "cancelled",
	})
	if err != nil {
		return fmt.Errorf("mercadopago preapproval cancel failed: %w", err)
	}
	return nil
}
