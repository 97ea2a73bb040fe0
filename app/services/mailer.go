package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/models"
	"gopkg.in/gomail.v2"
)

// SMTPNotifier sends summary emails with the PDF report attached.
type SMTPNotifier struct {
	smtp config.SMTPConfig
}

func NewSMTPNotifier(smtp config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{smtp: smtp}
}

func (n *SMTPNotifier) SendSummaryEmail(projectName string, summary *models.PersonProjectSummary, pdf []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.smtp.From)
	m.SetHeader("To", summary.CFEmail)
	m.SetHeader("Subject", fmt.Sprintf("Vendor Payment Summary for %s", projectName))

	body := fmt.Sprintf(
		"Hi %s,\n\nAttached is your vendor payment summary for project %s covering %s.\n\nTotal pay for this project: $%.2f\n\nIf anything looks off, please reply to this email.\n\nThanks,\nTeaching Lab Operations",
		summary.CFName, projectName, summary.SubmissionDate.Format("January 2006"), summary.TotalPayForProject,
	)
	m.SetBody("text/plain", body)

	filename := fmt.Sprintf("%s-payment-summary.pdf", sanitizeFilename(projectName))
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}))

	d := gomail.NewDialer(n.smtp.Host, n.smtp.Port, n.smtp.Username, n.smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send summary email to %s: %v", summary.CFEmail, err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "-", ":", "-")
	return strings.ToLower(replacer.Replace(name))
}
