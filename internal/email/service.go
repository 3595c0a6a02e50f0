package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Service sends transactional mail to customers.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to, customerName string, lines []BookingLine) error
	SendBookingCancellation(ctx context.Context, to, customerName, serviceName string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

// BookingLine is one confirmed appointment in a confirmation email.
type BookingLine struct {
	ServiceName string
	StaffName   string
	Start       string
	End         string
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendBookingConfirmation(ctx context.Context, to, customerName string, lines []BookingLine) error {
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your booking is confirmed:</p><ul>", customerName)
	for _, l := range lines {
		body += fmt.Sprintf("<li>%s with %s, %s &ndash; %s</li>", l.ServiceName, l.StaffName, l.Start, l.End)
	}
	body += "</ul><p>See you soon!</p>"

	return s.send(to, "Your booking is confirmed", body)
}

func (s *service) SendBookingCancellation(ctx context.Context, to, customerName, serviceName string) error {
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your %s appointment has been cancelled.</p>", customerName, serviceName)
	return s.send(to, "Booking cancelled", body)
}

func (s *service) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.send(to, subject, content)
}

func (s *service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
