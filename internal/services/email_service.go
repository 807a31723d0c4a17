package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailService sends transactional email. Welcome mail is best effort: a
// failure never fails the registration that triggered it.
type EmailService interface {
	SendWelcomeEmail(ctx context.Context, email, name string) error
}

// AWSSESEmailService sends email through AWS SES.
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendWelcomeEmail greets a newly registered account.
func (s *AWSSESEmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1>Hola %s, bienvenido a Vidriera</h1>
        <p>Tu cuenta fue creada. Ya puedes armar el sitio de tu negocio,
        cargar tus contactos y elegir un plan cuando lo necesites.</p>
        <p style="color: #666; font-size: 12px;">Este es un mensaje automatico, no respondas a este correo.</p>
    </div>
</body>
</html>
`, name)

	textBody := fmt.Sprintf(`Hola %s, bienvenido a Vidriera

Tu cuenta fue creada. Ya puedes armar el sitio de tu negocio, cargar tus
contactos y elegir un plan cuando lo necesites.

Este es un mensaje automatico, no respondas a este correo.
`, name)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("Bienvenido a Vidriera"),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	s.logger.Info("welcome email sent")
	return nil
}

// NoopEmailService is wired when email delivery is disabled.
type NoopEmailService struct{}

func (NoopEmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	return nil
}
