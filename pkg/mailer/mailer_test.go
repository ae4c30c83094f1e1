package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMTPSender_NotConfigured(t *testing.T) {
	s := NewSMTPSender("", 587, "", "", "crm@example.com", "CRM")
	err := s.Send(context.Background(), "user@example.com", "s", "<b>x</b>")
	assert.Error(t, err)
}

func TestSMTPSender_InvalidRecipient(t *testing.T) {
	s := NewSMTPSender("127.0.0.1", 2525, "", "", "crm@example.com", "CRM")
	err := s.Send(context.Background(), "not an address", "s", "x")
	assert.ErrorContains(t, err, "smtp to")
}
