package mail_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/planner/backend/internal/domain"
	"github.com/pkordes/planner/backend/internal/mail"
)

func TestNewSMTPSender_RequiresHost(t *testing.T) {
	_, err := mail.NewSMTPSender(mail.SMTPConfig{FromAddress: "team@plann.er"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "host")
}

func TestNewSMTPSender_RequiresFromAddress(t *testing.T) {
	_, err := mail.NewSMTPSender(mail.SMTPConfig{Host: "localhost", Port: 1025})

	require.Error(t, err)
	assert.ErrorContains(t, err, "from address")
}

func TestNewSMTPSender_OK(t *testing.T) {
	s, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:        "localhost",
		Port:        1025,
		FromName:    "Equipe plann.er",
		FromAddress: "equipe@plann.er",
	})

	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestNewSMTPSender_CredentialsWithoutTLS(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		tls     bool
		wantErr bool
	}{
		{"remote host in clear text", "smtp.example.com", false, true},
		{"remote host with TLS", "smtp.example.com", true, false},
		{"localhost in clear text", "localhost", false, false},
		{"loopback IP in clear text", "127.0.0.1", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mail.NewSMTPSender(mail.SMTPConfig{
				Host:        tc.host,
				Port:        587,
				Username:    "user",
				Password:    "secret",
				TLS:         tc.tls,
				FromAddress: "equipe@plann.er",
			})

			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, "require TLS")
				return
			}
			require.NoError(t, err)
		})
	}
}

// TestSMTPSender_Send_InvalidRecipient verifies that a message which can never
// be built is reported as ErrInvalidMessage before any connection is attempted.
func TestSMTPSender_Send_InvalidRecipient(t *testing.T) {
	s, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:        "localhost",
		Port:        1,
		FromAddress: "equipe@plann.er",
	})
	require.NoError(t, err)

	_, err = s.Send(context.Background(), mail.Message{To: "not an address", Subject: "s", HTML: "h"})

	require.Error(t, err)
	assert.ErrorIs(t, err, mail.ErrInvalidMessage)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

// TestLogSender_Send verifies that the development sender writes one JSON log
// line carrying the recipient, subject and body, and returns a Message-ID whose
// right-hand side is the sender's domain.
func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := mail.NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)), "equipe@plann.er")

	id, err := s.Send(context.Background(), mail.Message{
		To:      "a@x.com",
		Subject: "hello",
		HTML:    "<p>hi</p>",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, "@plann.er"), "got %q", id)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "a@x.com", entry["to"])
	assert.Equal(t, "hello", entry["subject"])
	assert.Equal(t, "<p>hi</p>", entry["html"])
	assert.Equal(t, id, entry["message_id"])
}
