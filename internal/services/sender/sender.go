// Package sender отправляет участникам письма-напоминания о продлении абонемента.
package sender

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/lib/smtp"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// SenderService формирует письма и отправляет их через smtp.Dialer.
type SenderService struct {
	transport smtp.Dialer
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.Dialer, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendRenewalReminder пишет участнику, что абонемент скоро закончится.
func (s *SenderService) SendRenewalReminder(n models.ExpiringNotice) error {
	const op = "sender.SendRenewalReminder"

	if n.Email == "" {
		return fmt.Errorf("%s: member %s has no email", op, n.MemberID)
	}

	name := strings.TrimSpace(n.FirstName + " " + n.LastName)
	if name == "" {
		name = n.MemberID
	}
	subject := "Your membership ends on " + n.EndDate.Format("January 2, 2006")
	body := fmt.Sprintf("Hello, %s!\n\nYour %s membership at %s ends on %s.\n",
		name, n.MembershipName, n.Location, n.EndDate.Format("January 2, 2006"))
	if n.SessionsLeft > 0 {
		body += fmt.Sprintf("You still have %d sessions left, book them before the end date.\n", n.SessionsLeft)
	}
	body += "\nRenew at the front desk to keep your schedule.\n"

	if err := s.sendEmail([]string{n.Email}, subject, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	if err = client.Quit(); err != nil {
		s.log.Warn("failed to quit SMTP session", sl.Err(err))
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
