package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameValidation(t *testing.T) {
	v := GetValidator()

	type payload struct {
		Username string `validate:"username_validation"`
	}

	valid := []string{"testUser", "test.user", "test-user", "test_user", "User123"}
	for _, username := range valid {
		assert.NoError(t, v.Validate.Struct(payload{Username: username}), username)
	}

	invalid := []string{"test user", "test@user", "tëstuser", "user!", ""}
	for _, username := range invalid {
		assert.Error(t, v.Validate.Struct(payload{Username: username}), username)
	}
}

func TestPasswordValidation(t *testing.T) {
	v := GetValidator()

	type payload struct {
		Password string `validate:"password_validation"`
	}

	valid := []string{"test.Password123", "Abcdefg1", "1aB"}
	for _, password := range valid {
		assert.NoError(t, v.Validate.Struct(payload{Password: password}), password)
	}

	invalid := []string{
		"alllowercase1",
		"ALLUPPERCASE1",
		"NoDigitsHere",
		"Pässword123",
		"",
	}
	for _, password := range invalid {
		assert.Error(t, v.Validate.Struct(payload{Password: password}), password)
	}
}

func TestEmailVerification(t *testing.T) {
	v := GetValidator()

	assert.True(t, v.VerifyEmail("anna@example.com"))
	assert.True(t, v.VerifyEmail("anna.mail+tag@sub.example.org"))

	// Syntactically plausible but without a mail-capable domain.
	assert.False(t, v.VerifyEmail("anna@localhost"))
	assert.False(t, v.VerifyEmail("anna"))
}

func TestSanitizeDataStripsMarkup(t *testing.T) {
	v := GetValidator()

	payload := struct {
		Content string
		Count   int
	}{
		Content: `Hello <script>alert("xss")</script>world`,
		Count:   3,
	}

	require.NoError(t, v.SanitizeData(&payload))
	assert.Equal(t, "Hello world", payload.Content)
	assert.Equal(t, 3, payload.Count)
}

func TestSanitizeDataIgnoresNonStructs(t *testing.T) {
	v := GetValidator()

	content := "<b>bold</b>"
	require.NoError(t, v.SanitizeData(&content))
	assert.Equal(t, "<b>bold</b>", content)
}

func TestGetValidatorReturnsSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
