package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/meditrack/ward-api/internal/config"
	"github.com/meditrack/ward-api/pkg/logger"
)

// Service sends care-team notifications. Delivery is best effort;
// callers must not fail a lifecycle operation on a send error.
type Service interface {
	SendAdmissionNotice(ctx context.Context, to, patientName, careUnitName, bedName string) error
	SendDischargeNotice(ctx context.Context, to, patientName, careUnitName string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAdmissionNotice(ctx context.Context, to, patientName, careUnitName, bedName string) error {
	subject := fmt.Sprintf("New admission: %s", patientName)
	body := fmt.Sprintf(
		"Patient %s has been admitted to %s, bed %s, and assigned to your care.",
		patientName, careUnitName, bedName,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendDischargeNotice(ctx context.Context, to, patientName, careUnitName string) error {
	subject := fmt.Sprintf("Discharge: %s", patientName)
	body := fmt.Sprintf(
		"Patient %s has been discharged from %s.",
		patientName, careUnitName,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// noopService is used when SMTP is not configured.
type noopService struct {
	logger *logger.Logger
}

func NewNoopService(l *logger.Logger) Service {
	return &noopService{logger: l}
}

func (s *noopService) SendAdmissionNotice(ctx context.Context, to, patientName, careUnitName, bedName string) error {
	s.logger.Debug("email disabled, skipping admission notice", "to", to)
	return nil
}

func (s *noopService) SendDischargeNotice(ctx context.Context, to, patientName, careUnitName string) error {
	s.logger.Debug("email disabled, skipping discharge notice", "to", to)
	return nil
}
