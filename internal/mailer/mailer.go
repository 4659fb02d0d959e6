// Package mailer is the notification side of the order workflow. Callers treat
// delivery as fire-and-forget: a failed send is logged at the call site and
// never surfaces to the HTTP caller.
package mailer

import (
	"bytes"
	"context"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"finemed-server/internal/config"
)

// Notifier dispatches a rendered HTML message.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// StatusUpdateSubject is the subject line for order status notifications.
const StatusUpdateSubject = "FineMed Order Status Update"

var statusUpdateTmpl = template.Must(template.New("statusUpdate").Parse(`
<div style="font-family: Arial, sans-serif; color: #333;">
  <h1 style="color: #0d9488;">Hello {{.UserName}},</h1>
  <p>Your order status has been updated.</p>
  <p style="font-size: 16px; color: #555;">
    Order ID: {{.OrderID}}<br />
    New Status: <strong>{{.Status}}</strong>
  </p>
  <p style="font-size: 14px;">Thank you for shopping with us!</p>
  <p style="color: #0d9488;"><b>FineMed Team</b></p>
</div>
`))

// RenderStatusUpdate fills the status notification template.
func RenderStatusUpdate(userName, orderID, status string) (string, error) {
	var buf bytes.Buffer
	err := statusUpdateTmpl.Execute(&buf, struct {
		UserName string
		OrderID  string
		Status   string
	}{userName, orderID, status})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SMTPNotifier sends mail through an SMTP submission endpoint.
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Send dials and delivers synchronously. The SMTP client has no context
// support; cancellation rides on its own dial timeout.
func (n *SMTPNotifier) Send(_ context.Context, to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.User)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Pass)
	return d.DialAndSend(m)
}
