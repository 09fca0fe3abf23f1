// Package mailer delivers account emails (confirmation links, password
// resets) over SMTP.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"
)

// Sender is the narrow interface handlers depend on; tests substitute it.
type Sender interface {
	SendConfirmation(to, username, link string) error
	SendPasswordReset(to, username, link string) error
}

// Config carries SMTP transport parameters.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends mail through a gomail dialer.
type SMTP struct {
	cfg  Config
	send func(m *gomail.Message) error
}

func NewSMTP(cfg Config) *SMTP {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTP{cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// SendConfirmation emails the account-confirmation link to a new registrant.
func (s *SMTP) SendConfirmation(to, username, link string) error {
	body, err := render(confirmationTmpl, username, link)
	if err != nil {
		return err
	}
	return s.deliver(to, "Confirm your Delicious Recipes account", body)
}

// SendPasswordReset emails a password-reset link.
func (s *SMTP) SendPasswordReset(to, username, link string) error {
	body, err := render(resetTmpl, username, link)
	if err != nil {
		return err
	}
	return s.deliver(to, "Reset your Delicious Recipes password", body)
}

func (s *SMTP) deliver(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	if err := s.send(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type mailData struct {
	Username string
	Link     string
}

func render(tmpl *template.Template, username, link string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, mailData{Username: username, Link: link}); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return buf.String(), nil
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; font-size: 14px; color: #333; background-color: #ebe2c8; padding: 20px;">
  <div style="background-color: #dd9b75; color: #fff; padding: 10px; text-align: center;">
    <h3>Welcome to Delicious Recipes!</h3>
  </div>
  <div style="padding: 20px;">
    <p>Dear {{.Username}},</p>
    <p>Thank you for registering with Delicious Recipes. Please click
      <a href="{{.Link}}" style="display:inline-block;padding:8px 16px;color:#fff;background-color:#dd9b75;border-radius:4px;text-decoration:none;">Confirm Your Account</a>
      to confirm your account and get started.</p>
    <p>If the button is not working please use the link below:</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>If you did not register for an account with Delicious Recipes, please ignore this email.</p>
  </div>
  <div style="background-color: #dd9b75; color: #fff; padding: 10px; text-align: center;">
    <p>Thank you,</p>
    <p>Delicious Recipes Team</p>
  </div>
</div>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<div style="font-family: Arial, sans-serif; font-size: 14px; color: #333; background-color: #ebe2c8; padding: 20px;">
  <div style="background-color: #dd9b75; color: #fff; padding: 10px; text-align: center;">
    <h3>Delicious Recipes</h3>
  </div>
  <div style="padding: 20px;">
    <p>Dear {{.Username}},</p>
    <p>We received a request to reset your password. Click
      <a href="{{.Link}}" style="display:inline-block;padding:8px 16px;color:#fff;background-color:#dd9b75;border-radius:4px;text-decoration:none;">Reset Password</a>
      to choose a new one. The link expires in one hour.</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>If you did not request a reset, you can safely ignore this email.</p>
  </div>
  <div style="background-color: #dd9b75; color: #fff; padding: 10px; text-align: center;">
    <p>Thank you,</p>
    <p>Delicious Recipes Team</p>
  </div>
</div>
`))
