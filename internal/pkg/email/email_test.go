package email

import (
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() SMTPConfig {
	return SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "mailer",
		Password:  "secret",
		FromName:  "HackFest 2025",
		FromEmail: "noreply@hackfest.app",
	}
}

func TestSendRegistrationConfirmationWithoutCredentialsIsNoop(t *testing.T) {
	s := NewEmailService(SMTPConfig{}, zerolog.Nop())
	s.send = func(string, []byte) error {
		t.Fatal("send must not be called without credentials")
		return nil
	}

	require.NoError(t, s.SendRegistrationConfirmation(RegistrationConfirmation{ToEmail: "jane@x.com"}))
}

func TestSendRegistrationConfirmation(t *testing.T) {
	s := NewEmailService(testConfig(), zerolog.Nop())

	var to string
	var message []byte
	s.send = func(recipient string, m []byte) error {
		to, message = recipient, m
		return nil
	}

	err := s.SendRegistrationConfirmation(RegistrationConfirmation{
		ToEmail:        "jane@x.com",
		ToName:         "Jane <Doe>",
		ProjectTitle:   "App",
		RegistrationID: "c0ffee",
		Members:        []string{"Bob", "Carol"},
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@x.com", to)
	body := string(message)
	assert.Contains(t, body, "From: HackFest 2025 <noreply@hackfest.app>\r\n")
	assert.Contains(t, body, "Subject: HackFest 2025 - Registration Confirmed\r\n")
	assert.Contains(t, body, "Hello Jane &lt;Doe&gt;,")
	assert.Contains(t, body, "<li>Carol</li>")
	assert.Contains(t, body, "c0ffee")
}

func TestSendRegistrationConfirmationPropagatesFailure(t *testing.T) {
	s := NewEmailService(testConfig(), zerolog.Nop())
	s.send = func(string, []byte) error { return errors.New("connection refused") }

	err := s.SendRegistrationConfirmation(RegistrationConfirmation{ToEmail: "jane@x.com"})
	assert.EqualError(t, err, "connection refused")
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	s := NewEmailService(testConfig(), zerolog.Nop())

	message := string(s.buildMessage("jane@x.com\r\nBcc: evil@x.com", "Hi", "<p>x</p>"))
	assert.Contains(t, message, "To: jane@x.comBcc: evil@x.com\r\n")
	assert.NotContains(t, message, "\r\nBcc:")
}

func TestSendSMTPGivesUpOnSilentServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	// Accept connections but never send the SMTP greeting.
	go func() {
		var held []net.Conn
		defer func() {
			for _, conn := range held {
				conn.Close()
			}
		}()
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			held = append(held, conn)
		}
	}()

	host, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Host = host
	cfg.Port = portNum
	cfg.Timeout = 50 * time.Millisecond
	s := NewEmailService(cfg, zerolog.Nop())

	start := time.Now()
	err = s.SendRegistrationConfirmation(RegistrationConfirmation{ToEmail: "jane@x.com"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
