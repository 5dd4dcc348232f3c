// file: internal/services/email_service.go
package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"jobmatchhub/internal/config"
	"jobmatchhub/internal/events"
	"jobmatchhub/internal/models"

	"go.uber.org/zap"
)

// emailService implements EmailService over SMTP. When email is
// disabled in config it logs what would have been sent instead, which
// keeps development environments quiet.
type emailService struct {
	cfg    *config.EmailConfig
	appURL string
	logger *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig, appURL string, logger *zap.Logger) EmailService {
	return &emailService{
		cfg:    cfg,
		appURL: appURL,
		logger: logger,
	}
}

// statusMessages maps pipeline statuses to the line shown in the
// status-change email body
var statusMessages = map[models.ApplicationStatus]string{
	models.StatusReviewed:    "Your application has been reviewed.",
	models.StatusShortlisted: "Congratulations, you have been shortlisted!",
	models.StatusInterviewed: "Your interview has been recorded. We will be in touch.",
	models.StatusOffered:     "Congratulations, you have received an offer!",
	models.StatusRejected:    "Unfortunately your application was not successful this time.",
}

func (s *emailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	subject := "Welcome to JobMatch Hub"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour account has been created. Happy job hunting!\r\n", name)
	return s.send(ctx, to, subject, body)
}

func (s *emailService) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)
	subject := "Reset your password"
	body := fmt.Sprintf(
		"A password reset was requested for your account.\r\n\r\n"+
			"Reset link (valid for 10 minutes): %s\r\n\r\n"+
			"If you did not request this, you can ignore this email.\r\n",
		resetURL,
	)
	return s.send(ctx, to, subject, body)
}

func (s *emailService) SendApplicationReceivedEmail(ctx context.Context, to, applicantName, jobTitle string) error {
	subject := fmt.Sprintf("New application for %s", jobTitle)
	body := fmt.Sprintf("%s has applied to your posting %q.\r\n", applicantName, jobTitle)
	return s.send(ctx, to, subject, body)
}

func (s *emailService) SendStatusChangeEmail(ctx context.Context, to, jobTitle string, status models.ApplicationStatus, feedback string) error {
	message, ok := statusMessages[status]
	if !ok {
		message = fmt.Sprintf("Your application status is now %s.", status)
	}

	subject := fmt.Sprintf("Update on your application for %s", jobTitle)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\r\n", message)
	if feedback != "" {
		fmt.Fprintf(&b, "\r\nFeedback from the recruiter:\r\n%s\r\n", feedback)
	}

	return s.send(ctx, to, subject, b.String())
}

func (s *emailService) send(_ context.Context, to, subject, body string) error {
	if to == "" {
		return nil
	}

	if !s.cfg.Enabled {
		s.logger.Info("Email sending disabled, logging instead",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		s.logger.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	return nil
}

// ===============================
// EVENT SUBSCRIPTIONS
// ===============================

// RegisterEmailHandlers wires notification emails to the domain events
// that trigger them. Email failures are logged by the bus and never
// fail the originating request.
func RegisterEmailHandlers(bus events.EventBus, emails EmailService, logger *zap.Logger) error {
	handlers := map[string]events.EventHandler{
		events.EventUserRegistered: events.NewEventHandlerFunc("email.welcome", func(ctx context.Context, e events.Event) error {
			evt, ok := e.(*events.UserRegisteredEvent)
			if !ok {
				return nil
			}
			return emails.SendWelcomeEmail(ctx, evt.Email, evt.Name)
		}),

		events.EventPasswordResetRequested: events.NewEventHandlerFunc("email.password_reset", func(ctx context.Context, e events.Event) error {
			evt, ok := e.(*events.PasswordResetRequestedEvent)
			if !ok {
				return nil
			}
			return emails.SendPasswordResetEmail(ctx, evt.Email, evt.ResetToken)
		}),

		events.EventApplicationSubmitted: events.NewEventHandlerFunc("email.application_received", func(ctx context.Context, e events.Event) error {
			evt, ok := e.(*events.ApplicationSubmittedEvent)
			if !ok {
				return nil
			}
			return emails.SendApplicationReceivedEmail(ctx, evt.RecruiterEmail, evt.ApplicantName, evt.JobTitle)
		}),

		events.EventApplicationStatusChanged: events.NewEventHandlerFunc("email.status_change", func(ctx context.Context, e events.Event) error {
			evt, ok := e.(*events.ApplicationStatusChangedEvent)
			if !ok {
				return nil
			}
			return emails.SendStatusChangeEmail(ctx, evt.ApplicantEmail, evt.JobTitle,
				models.ApplicationStatus(evt.NewStatus), evt.Feedback)
		}),
	}

	for eventType, handler := range handlers {
		if err := bus.Subscribe(eventType, handler); err != nil {
			return fmt.Errorf("failed to subscribe %s handler: %w", eventType, err)
		}
	}

	logger.Info("Email event handlers registered", zap.Int("handlers", len(handlers)))
	return nil
}
