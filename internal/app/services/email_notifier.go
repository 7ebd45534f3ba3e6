package services

import (
	"context"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/pkg/email"
)

// EmailNotifier sends the confirmation email for a stored registration.
type EmailNotifier struct {
	emailService email.EmailService
}

// NewEmailNotifier creates a new EmailNotifier
func NewEmailNotifier(emailService email.EmailService) *EmailNotifier {
	return &EmailNotifier{emailService: emailService}
}

// RegistrationConfirmed implements registration.Notifier
func (n *EmailNotifier) RegistrationConfirmed(_ context.Context, record models.RegistrationRecord) error {
	reg := record.Registration

	members := make([]string, 0, models.TeamSize)
	for _, m := range reg.Members() {
		members = append(members, m.Name)
	}

	return n.emailService.SendRegistrationConfirmation(email.RegistrationConfirmation{
		ToEmail:        reg.LeaderEmail,
		ToName:         reg.LeaderName,
		ProjectTitle:   reg.ProjectTitle,
		RegistrationID: record.ID,
		Members:        members,
	})
}
