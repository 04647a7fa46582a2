package service

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/http"
	texttmpl "text/template"

	"simedu_backend/internal/config"
	"simedu_backend/internal/util"
	"simedu_backend/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Message is one outbound transactional email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Text      string
	HTML      string
}

// Mailer hands rendered messages to a mail relay.
type Mailer interface {
	Send(msg Message) error
}

// NewMailer picks the backend from config. The console backend is the
// development default.
func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.Backend == "sendgrid" && cfg.SendgridKey != "" {
		return &sendgridMailer{cfg: cfg}
	}
	return &consoleMailer{}
}

type sendgridMailer struct {
	cfg config.MailConfig
}

func (m *sendgridMailer) Send(msg Message) error {
	from := sgmail.NewEmail(m.cfg.FromName, m.cfg.FromAddress)
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	mail := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	req := sendgrid.GetRequest(m.cfg.SendgridKey, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(mail)

	res, err := sendgrid.API(req)
	if err != nil {
		logger.Log.Error("mail send failed", zap.String("to", msg.ToAddress), zap.Error(err))
		return util.ErrDeliveryFailed
	}
	if res.StatusCode >= http.StatusBadRequest {
		logger.Log.Error("mail relay rejected send",
			zap.String("to", msg.ToAddress), zap.Int("status", res.StatusCode), zap.String("body", res.Body))
		return util.ErrDeliveryFailed
	}
	return nil
}

// consoleMailer logs instead of sending. Used in development and tests.
type consoleMailer struct{}

func (m *consoleMailer) Send(msg Message) error {
	logger.Log.Info("mail (console backend)",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

var (
	resetTextTmpl = texttmpl.Must(texttmpl.New("reset.txt").Parse(
		"Hello {{.Name}},\n\nA password reset was requested for your account. Open the link below to choose a new password. The link expires in 24 hours.\n\n{{.Link}}\n\nIf you did not request this, you can ignore this message.\n"))
	resetHTMLTmpl = htmltmpl.Must(htmltmpl.New("reset.html").Parse(
		"<p>Hello {{.Name}},</p><p>A password reset was requested for your account. The link below expires in 24 hours.</p><p><a href=\"{{.Link}}\">Reset your password</a></p><p>If you did not request this, you can ignore this message.</p>"))

	demoAckTextTmpl = texttmpl.Must(texttmpl.New("demo_ack.txt").Parse(
		"Hello {{.Name}},\n\nThank you for your interest. We received your demo request and will be in touch shortly.\n"))
	demoAckHTMLTmpl = htmltmpl.Must(htmltmpl.New("demo_ack.html").Parse(
		"<p>Hello {{.Name}},</p><p>Thank you for your interest. We received your demo request and will be in touch shortly.</p>"))
)

// MailService renders the fixed transactional templates and hands them
// to the relay.
type MailService struct {
	Mailer Mailer
	Config config.MailConfig
}

func NewMailService(mailer Mailer, cfg config.MailConfig) *MailService {
	return &MailService{Mailer: mailer, Config: cfg}
}

func renderText(tmpl *texttmpl.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func renderHTML(tmpl *htmltmpl.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

// SendPasswordReset mails the reset link. A relay rejection surfaces to
// the caller.
func (s *MailService) SendPasswordReset(name, address, token string) error {
	data := struct {
		Name string
		Link string
	}{
		Name: name,
		Link: fmt.Sprintf("%s/reset-password?token=%s", s.Config.FrontendURL, token),
	}
	return s.Mailer.Send(Message{
		ToName:    name,
		ToAddress: address,
		Subject:   "Password reset",
		Text:      renderText(resetTextTmpl, data),
		HTML:      renderHTML(resetHTMLTmpl, data),
	})
}

// SendDemoAcknowledgment thanks the requester.
func (s *MailService) SendDemoAcknowledgment(name, address string) error {
	data := struct{ Name string }{Name: name}
	return s.Mailer.Send(Message{
		ToName:    name,
		ToAddress: address,
		Subject:   "We received your demo request",
		Text:      renderText(demoAckTextTmpl, data),
		HTML:      renderHTML(demoAckHTMLTmpl, data),
	})
}

// SendDemoNotification forwards the request to the internal inbox.
func (s *MailService) SendDemoNotification(name, email, company, phone, message string) error {
	body := fmt.Sprintf("New demo request\n\nName: %s\nEmail: %s\nCompany: %s\nPhone: %s\n\n%s\n",
		name, email, company, phone, message)
	return s.Mailer.Send(Message{
		ToName:    "Sales",
		ToAddress: s.Config.InternalAddr,
		Subject:   "New demo request: " + company,
		Text:      body,
		HTML:      "",
	})
}
