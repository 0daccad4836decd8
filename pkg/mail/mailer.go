package mail

import (
	"bytes"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"naumstay/pkg/logger"
	"naumstay/pkg/model"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends transactional and newsletter mail over SMTP. With no host
// configured it degrades to logging the would-be delivery, which keeps local
// development and tests free of SMTP wiring.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	log    *logger.Logger
}

func New(cfg Config, log *logger.Logger) *Mailer {
	m := &Mailer{from: cfg.From, log: log}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h1>Hello {{.Guest.FirstName}} {{.Guest.LastName}},</h1>
<p>Your booking for {{.RoomName}} has been confirmed!</p>
<p><strong>Booking Details:</strong></p>
<ul>
  <li><strong>Reference:</strong> {{.Reference}}</li>
  <li><strong>Room:</strong> {{.RoomName}}</li>
  <li><strong>Check-in:</strong> {{.CheckInDate.Format "2006-01-02"}}</li>
  <li><strong>Check-out:</strong> {{.CheckOutDate.Format "2006-01-02"}}</li>
  <li><strong>Nights:</strong> {{.Nights}}</li>
  <li><strong>Adults:</strong> {{.Adults}}</li>
  <li><strong>Children:</strong> {{.Children}}</li>
  <li><strong>Total Price:</strong> ${{printf "%.2f" .TotalCost}}</li>
</ul>
<p>We look forward to welcoming you!</p>
<p>Best regards,<br/>NaumApartments</p>
`))

func (m *Mailer) SendBookingConfirmation(booking *model.Booking) error {
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, booking); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	subject := fmt.Sprintf("Booking Confirmation for %s", booking.RoomName)
	return m.send(booking.Guest.Email, subject, body.String())
}

// SendReply delivers an admin's answer to a contact-form message.
func (m *Mailer) SendReply(to, subject, body string) error {
	return m.send(to, subject, "<p>"+template.HTMLEscapeString(body)+"</p>")
}

func (m *Mailer) SendNewsletter(to, subject, html, unsubscribeURL string) error {
	body := html + fmt.Sprintf(`<p><a href="%s">Unsubscribe</a></p>`, unsubscribeURL)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.dialer == nil {
		m.log.Info("SMTP not configured, skipping email delivery",
			"to", to,
			"subject", subject,
		)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
