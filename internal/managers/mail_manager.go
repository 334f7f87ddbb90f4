// Package managers handles the sending of emails for account activation and
// password reset using the Mailgun service and the Hermes package for formatting.
package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendActivationMail(email, username, token string) error
	SendPasswordResetMail(email, username, token string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
}

var from = "Hoax Server <noreply@hoax-server.app>"
var environment string

// SendActivationMail sends an activation email with the one-time token that
// activates the account.
func (mm *MailManager) SendActivationMail(email, username, token string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Welcome to Hoax Server! We're very excited to have you on board.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To activate your account, please enter the following code:",
					InviteCode:   token,
				},
			},
			Outros: []string{
				"If you did not sign up, no further action is required on your part.",
			},
		},
	}

	return mm.send(email, "Activate your account", mailBody)
}

// SendPasswordResetMail sends a password reset email with the one-time token
// that authorizes setting a new password.
func (mm *MailManager) SendPasswordResetMail(email, username, token string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"You have requested to reset the password of your account.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To set a new password, please enter the following code:",
					InviteCode:   token,
				},
			},
			Outros: []string{
				"If you did not request a password reset, you can safely ignore this email.",
			},
		},
	}

	return mm.send(email, "Reset your password", mailBody)
}

func (mm *MailManager) send(email, subject string, mailBody hermes.Email) error {
	if environment != "production" {
		log.Info("Skipping mail dispatch in development mode")
		return nil
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	message := mm.Mailgun.NewMessage(from, subject, "", email)
	message.SetHtml(emailBody)
	if _, _, err = mm.Mailgun.Send(ctx, message); err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return fmt.Errorf("sending mail to %s: %w", email, err)
	}
	log.Debug("Mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager with configured Mailgun and
// Hermes settings. Outside of production no mail leaves the process.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	domain := os.Getenv("MAILGUN_DOMAIN")
	mailgunInstance := mailgun.NewMailgun(domain, apiKey)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name: "Hoax Server",
				Link: "https://hoax-server.app/",
			},
		},
		Mailgun: mailgunInstance,
	}
	log.Info("Initialized mail manager")
	return mm
}
