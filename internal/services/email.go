package services

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
	"github.com/yungbote/aquasync-backend/internal/platform/sendgrid"
)

// EmailService sends transactional mail. The reset link lands on the web app,
// which posts the token back to the confirm endpoint.
type EmailService interface {
	SendPasswordReset(ctx context.Context, user *types.User, rawToken string) error
}

type emailService struct {
	log             *logger.Logger
	mailer          sendgrid.Client
	resetTemplateID string
	resetURLBase    string
}

func NewEmailService(log *logger.Logger, mailer sendgrid.Client) EmailService {
	return &emailService{
		log:             log.With("service", "EmailService"),
		mailer:          mailer,
		resetTemplateID: strings.TrimSpace(os.Getenv("SENDGRID_RESET_TEMPLATE_ID")),
		resetURLBase:    strings.TrimSpace(os.Getenv("PASSWORD_RESET_URL_BASE")),
	}
}

func (es *emailService) SendPasswordReset(ctx context.Context, user *types.User, rawToken string) error {
	if user == nil || user.Email == "" {
		return fmt.Errorf("user with email required")
	}
	if es.mailer == nil {
		return fmt.Errorf("mailer not configured")
	}

	resetURL := es.resetURL(rawToken)

	req := sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: user.Email, Name: strings.TrimSpace(user.FirstName + " " + user.LastName)}},
		Categories: []string{"password_reset"},
	}
	if es.resetTemplateID != "" {
		req.TemplateID = es.resetTemplateID
		req.DynamicTemplateData = map[string]any{
			"first_name": user.FirstName,
			"reset_url":  resetURL,
		}
	} else {
		req.Subject = "Reset your AquaSync password"
		req.Text = fmt.Sprintf(
			"Hi %s,\n\nSomeone asked to reset the password for this account. If that was you, open the link below within the next hour:\n\n%s\n\nIf you did not ask for a reset, ignore this email.\n",
			user.FirstName, resetURL,
		)
	}

	res, err := es.mailer.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	es.log.Debug("password reset email accepted", "status", res.StatusCode, "message_id", res.MessageID)
	return nil
}

func (es *emailService) resetURL(rawToken string) string {
	base := es.resetURLBase
	if base == "" {
		base = "http://localhost:3000/reset-password"
	}
	return base + "?token=" + url.QueryEscape(rawToken)
}
