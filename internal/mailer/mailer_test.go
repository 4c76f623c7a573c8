package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpage/backend/internal/domain"
)

func TestRenderTemplate(t *testing.T) {
	assert.Equal(t, "<h1>Olá Maria,</h1>", RenderTemplate("<h1>Olá {{name}},</h1>", "Maria"))
	assert.Equal(t, "Oi Maria!", RenderTemplate("Oi {name}!", "Maria"))
	assert.Equal(t, "sem placeholder", RenderTemplate("sem placeholder", "Maria"))
}

func TestSendSkipsWhenNotConfigured(t *testing.T) {
	m := New(func() (*domain.SMTPSettings, error) {
		return &domain.SMTPSettings{}, nil
	}, nil)

	require.NoError(t, m.Send("a@b.com", "Assunto", "<p>corpo</p>"))
}

func TestSendSkipsWhenSettingsUnavailable(t *testing.T) {
	m := New(func() (*domain.SMTPSettings, error) {
		return nil, assert.AnError
	}, nil)

	require.NoError(t, m.Send("a@b.com", "Assunto", "<p>corpo</p>"))
}

func TestTestConnectionRequiresConfiguration(t *testing.T) {
	m := New(func() (*domain.SMTPSettings, error) {
		return &domain.SMTPSettings{}, nil
	}, nil)

	assert.ErrorIs(t, m.TestConnection(domain.SMTPSettings{}), ErrNotConfigured)
}

func TestNewDialerRejectsInvalidPort(t *testing.T) {
	_, err := newDialer(&domain.SMTPSettings{
		Host: "smtp.example.com",
		Port: "abc",
	})
	assert.Error(t, err)
}

func TestNewDialerParsesPortString(t *testing.T) {
	dialer, err := newDialer(&domain.SMTPSettings{
		Host:   "smtp.example.com",
		Port:   " 587 ",
		User:   "user",
		UseTLS: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 587, dialer.Port)
	assert.Equal(t, "smtp.example.com", dialer.TLSConfig.ServerName)
}
