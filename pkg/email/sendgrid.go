package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/shopzen/shopzen-backend/pkg/config"
	apperrors "github.com/shopzen/shopzen-backend/pkg/errors"
)

// Message is a single outbound transactional email.
type Message struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Sender delivers a single message. Implementations make exactly one delivery
// attempt per call; retry policy belongs to the caller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridSender sends mail through the SendGrid v3 API.
type SendgridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	validate  *validator.Validate
}

// NewSendgridSender builds a sender from config. The API key and default
// from-address are required.
func NewSendgridSender(cfg config.SendgridConfig) (*SendgridSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.New(apperrors.CodeInternal, "sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, apperrors.New(apperrors.CodeInternal, "sendgrid default from address is required")
	}
	return &SendgridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.DefaultFrom,
		fromName:  cfg.FromName,
		validate:  validator.New(),
	}, nil
}

// Send makes a single delivery attempt. A malformed recipient or empty body
// returns a validation-coded error before any network call; SendGrid transport
// or API failures return a dependency-coded error.
func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	if err := s.validateMessage(msg); err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "sendgrid request failed")
	}
	if resp.StatusCode >= 400 {
		return apperrors.New(
			apperrors.CodeDependency,
			fmt.Sprintf("sendgrid rejected message with status %d", resp.StatusCode),
		).WithDetails(resp.Body)
	}
	return nil
}

func (s *SendgridSender) validateMessage(msg Message) error {
	if err := s.validate.Var(msg.To, "required,email"); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "recipient address is not a valid email")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return apperrors.New(apperrors.CodeValidation, "subject is required")
	}
	if strings.TrimSpace(msg.PlainText) == "" && strings.TrimSpace(msg.HTML) == "" {
		return apperrors.New(apperrors.CodeValidation, "message body is required")
	}
	return nil
}
