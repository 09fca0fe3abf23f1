package mailer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"
)

func captureSMTP() (*SMTP, *[]*gomail.Message) {
	var sent []*gomail.Message
	s := NewSMTP(Config{Host: "localhost", Port: 1025, From: "noreply@recipes.test"})
	s.send = func(m *gomail.Message) error {
		sent = append(sent, m)
		return nil
	}
	return s, &sent
}

func TestSendConfirmation(t *testing.T) {
	s, sent := captureSMTP()

	err := s.SendConfirmation("ana@example.com", "ana", "https://recipes.test/authentication/verify/abc")
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	m := (*sent)[0]
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"noreply@recipes.test"}, m.GetHeader("From"))
	assert.Contains(t, m.GetHeader("Subject")[0], "Confirm")
}

func TestSendPasswordReset(t *testing.T) {
	s, sent := captureSMTP()

	err := s.SendPasswordReset("bob@example.com", "bob", "https://recipes.test/reset/xyz")
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].GetHeader("Subject")[0], "Reset")
}

func TestSendErrorIsWrapped(t *testing.T) {
	s, _ := captureSMTP()
	s.send = func(m *gomail.Message) error { return errors.New("smtp down") }

	err := s.SendConfirmation("ana@example.com", "ana", "link")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ana@example.com")
}

func TestTemplatesEscapeAndIncludeLink(t *testing.T) {
	body, err := render(confirmationTmpl, "eve<script>", "https://recipes.test/v/t1")
	require.NoError(t, err)
	assert.Contains(t, body, "https://recipes.test/v/t1")
	assert.NotContains(t, body, "<script>")
}
