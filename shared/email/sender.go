package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"

	"framecheck/internal/models"
	"framecheck/shared/config"
	"framecheck/shared/format"
)

//go:embed digest.html
var digestTemplate string

var digest = template.Must(template.New("digest").Funcs(template.FuncMap{
	// Result HTML is built by format.Format and passed through the sanitizer again here
	"safe": func(s string) template.HTML { return template.HTML(format.Sanitize(s)) },
}).Parse(digestTemplate))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

// SendReport mails the digest of a watch run. Runs without any analyzed video are not sent.
func (s *Sender) SendReport(report *models.WatchReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if report.Analyzed == 0 {
		return nil // Nothing worth reading
	}

	subject := fmt.Sprintf("FrameCheck Digest - %d Videos Analyzed (%s)",
		report.Analyzed, report.Date.Format("Jan 2, 2006"))

	body, err := generateBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.send(addr, auth, s.config.FromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func generateBody(report *models.WatchReport) (string, error) {
	var buf bytes.Buffer
	if err := digest.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
