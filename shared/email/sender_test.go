package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"framecheck/internal/models"
	"framecheck/shared/config"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestSender(sent *[]sentMail, err error) *Sender {
	s := NewSender(&config.EmailConfig{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		Username:   "bot@example.com",
		Password:   "secret",
		FromEmail:  "bot@example.com",
		ToEmail:    "me@example.com",
	})
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return err
	}
	return s
}

func testReport() *models.WatchReport {
	return &models.WatchReport{
		Date:     time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Mode:     models.ModeVerify,
		Analyzed: 1,
		Failed:   1,
		Videos: []models.WatchReportItem{
			{URL: "https://www.youtube.com/watch?v=abc", ResultHTML: "<strong>Verdict</strong><br>ok<script>alert(1)</script>"},
			{URL: "https://www.youtube.com/watch?v=def", Error: "backend <error>"},
		},
	}
}

func TestSendReport(t *testing.T) {
	var sent []sentMail
	s := newTestSender(&sent, nil)

	if err := s.SendReport(testReport()); err != nil {
		t.Fatalf("SendReport failed: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("Sent %d emails, want 1", len(sent))
	}

	mail := sent[0]
	if mail.addr != "smtp.example.com:587" || mail.from != "bot@example.com" || mail.to[0] != "me@example.com" {
		t.Errorf("Envelope = %+v", mail)
	}
	checks := []string{
		"Subject: FrameCheck Digest - 1 Videos Analyzed (Mar 14, 2026)",
		"Content-Type: text/html",
		"FrameCheck Verify Digest",
		"1 analyzed, 1 failed, 0 skipped",
		"<strong>Verdict</strong>",
		"Error: backend &lt;error&gt;",
	}
	for _, want := range checks {
		if !strings.Contains(mail.msg, want) {
			t.Errorf("Message missing %q", want)
		}
	}
	if strings.Contains(mail.msg, "<script>") {
		t.Error("Result HTML was not sanitized")
	}
}

func TestSendReportSkipsEmptyRuns(t *testing.T) {
	var sent []sentMail
	s := newTestSender(&sent, nil)

	report := testReport()
	report.Analyzed = 0
	if err := s.SendReport(report); err != nil {
		t.Fatalf("SendReport failed: %v", err)
	}
	if len(sent) != 0 {
		t.Errorf("Sent %d emails for a run without results", len(sent))
	}

	if err := s.SendReport(nil); err == nil {
		t.Error("Expected error for nil report")
	}
}

func TestSendReportError(t *testing.T) {
	var sent []sentMail
	s := newTestSender(&sent, errors.New("connection refused"))

	err := s.SendReport(testReport())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("SendReport error = %v", err)
	}
}
