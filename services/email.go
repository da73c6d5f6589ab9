package services

import (
	"fmt"
	"strings"
	"time"

	"citysense-be/models"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// EmailService composes and dispatches lifecycle notifications. When no
// mail credentials are configured every send is a logged no-op.
type EmailService struct {
	dialer     *gomail.Dialer
	from       string
	adminEmail string
	enabled    bool
}

// NewEmailService builds the SMTP sender. Missing user/pass disables it.
func NewEmailService(host string, port int, user, pass, adminEmail string) *EmailService {
	s := &EmailService{
		from:       user,
		adminEmail: adminEmail,
		enabled:    user != "" && pass != "",
	}
	if s.enabled {
		s.dialer = gomail.NewDialer(host, port, user, pass)
	}
	return s
}

// Enabled reports whether a mail transport is configured.
func (s *EmailService) Enabled() bool { return s.enabled }

func (s *EmailService) send(to, subject, html string) error {
	if !s.enabled {
		log.Debug().Str("to", to).Str("subject", subject).Msg("email service not configured, skipping send")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// SendIssueNotification notifies the admin inbox about a new report.
func (s *EmailService) SendIssueNotification(issue *models.Issue) error {
	subject := fmt.Sprintf("New Issue Reported: %s", issue.Title)

	var b strings.Builder
	b.WriteString("<h2>New Issue Reported on CitySense</h2>")
	fmt.Fprintf(&b, "<p><strong>Title:</strong> %s</p>", issue.Title)
	fmt.Fprintf(&b, "<p><strong>Category:</strong> %s</p>", issue.Category)
	fmt.Fprintf(&b, "<p><strong>Severity:</strong> %d/5</p>", issue.Severity)
	fmt.Fprintf(&b, "<p><strong>Description:</strong> %s</p>", issue.Description)
	fmt.Fprintf(&b, "<p><strong>Location:</strong> %f, %f</p>", issue.Location.Lat, issue.Location.Lng)
	if issue.Location.Address != "" {
		fmt.Fprintf(&b, "<p><strong>Address:</strong> %s</p>", issue.Location.Address)
	}
	if issue.ImageURL != nil {
		fmt.Fprintf(&b, `<p><strong>Image:</strong> <a href="%s">View Image</a></p>`, *issue.ImageURL)
	}
	fmt.Fprintf(&b, "<p><strong>Reported At:</strong> %s</p>", issue.Timestamp.Format(time.RFC1123))
	b.WriteString("<p>Please review and take appropriate action.</p>")

	return s.send(s.adminEmail, subject, b.String())
}

// SendResolutionNotification tells the reporter their issue is resolved.
func (s *EmailService) SendResolutionNotification(issue *models.Issue, userEmail string) error {
	subject := fmt.Sprintf("Issue Resolved: %s", issue.Title)

	var b strings.Builder
	b.WriteString("<h2>Your Issue Has Been Resolved</h2>")
	b.WriteString("<p>Dear CitySense User,</p>")
	b.WriteString("<p>We're pleased to inform you that your reported issue has been resolved.</p>")
	b.WriteString("<p><strong>Issue Details:</strong></p>")
	fmt.Fprintf(&b, "<p><strong>Title:</strong> %s</p>", issue.Title)
	fmt.Fprintf(&b, "<p><strong>Category:</strong> %s</p>", issue.Category)
	fmt.Fprintf(&b, "<p><strong>Description:</strong> %s</p>", issue.Description)
	fmt.Fprintf(&b, "<p><strong>Location:</strong> %f, %f</p>", issue.Location.Lat, issue.Location.Lng)
	fmt.Fprintf(&b, "<p><strong>Resolved At:</strong> %s</p>", time.Now().Format(time.RFC1123))
	b.WriteString("<p>Thank you for helping improve our community through CitySense!</p>")
	b.WriteString("<p>Best regards,<br>The CitySense Team</p>")

	return s.send(userEmail, subject, b.String())
}
