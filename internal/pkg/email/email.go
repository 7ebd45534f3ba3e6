package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendRegistrationConfirmation(msg RegistrationConfirmation) error
}

// RegistrationConfirmation is the content of a confirmation email.
type RegistrationConfirmation struct {
	ToEmail        string
	ToName         string
	ProjectTitle   string
	RegistrationID string
	Members        []string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for the application
	// Timeout bounds one delivery, from dial to QUIT.
	Timeout time.Duration
}

// DefaultTimeout applies when SMTPConfig.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Configured reports whether credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// sendFunc delivers a fully formatted message.
type sendFunc func(to string, message []byte) error

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   sendFunc
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) *EmailServiceImpl {
	s := &EmailServiceImpl{
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
	}
	s.send = s.sendSMTP
	return s
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Registration Successful!</h2>
		<p>Hello {{.ToName}},</p>
		<p>Thank you for registering for HackFest 2025. We'll be in touch soon!</p>
		<p>Project: <strong>{{.ProjectTitle}}</strong></p>
		{{- if .Members}}
		<p>Team members:</p>
		<ul>
		{{- range .Members}}
			<li>{{.}}</li>
		{{- end}}
		</ul>
		{{- end}}
		<p>Your registration reference is <strong>{{.RegistrationID}}</strong>. Please quote it in any correspondence.</p>
		<p>Best regards,<br>The HackFest Team</p>
	</div>
</body>
</html>
`))

// SendRegistrationConfirmation emails the team leader after a registration is stored
func (s *EmailServiceImpl) SendRegistrationConfirmation(msg RegistrationConfirmation) error {
	// If credentials are missing, log the email instead (for development only)
	if !s.config.Configured() {
		s.logger.Warn().
			Str("toEmail", msg.ToEmail).
			Str("registrationID", msg.RegistrationID).
			Msg("SMTP credentials not configured - registration confirmation not sent.")
		return nil
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	subject := "HackFest 2025 - Registration Confirmed"
	if err := s.send(msg.ToEmail, s.buildMessage(msg.ToEmail, subject, body.String())); err != nil {
		s.logger.Error().Err(err).Str("toEmail", msg.ToEmail).Msg("Failed to send registration confirmation")
		return err
	}

	s.logger.Info().Str("toEmail", msg.ToEmail).Str("registrationID", msg.RegistrationID).Msg("Registration confirmation sent")
	return nil
}

// buildMessage formats headers and an HTML body
func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)},
		{"To", toEmail},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var b strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], sanitizeHeader(h[1]))
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}

// sendSMTP delivers the message over SMTP, with implicit TLS when configured
// and STARTTLS when the server offers it. The whole exchange shares one
// deadline so a stalled server cannot hold the caller.
func (s *EmailServiceImpl) sendSMTP(toEmail string, message []byte) error {
	serverAddress := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	tlsConfig := &tls.Config{ServerName: s.config.Host}
	dialer := &net.Dialer{Timeout: s.timeout()}

	var (
		conn net.Conn
		err  error
	)
	if s.config.UseTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", serverAddress, tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", serverAddress)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.timeout())); err != nil {
		return fmt.Errorf("failed to set SMTP deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}

func (s *EmailServiceImpl) timeout() time.Duration {
	if s.config.Timeout > 0 {
		return s.config.Timeout
	}
	return DefaultTimeout
}
