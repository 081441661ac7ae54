package billing

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viniciusbm/onboardly/app/models"
)

func strPtr(s string) *string { return &s }

func TestResolveCredentialPriority(t *testing.T) {
	eventSecret := base64.StdEncoding.EncodeToString([]byte("FromEvent1!"))
	accountSecret := base64.StdEncoding.EncodeToString([]byte("FromAccount1!"))

	tests := []struct {
		name       string
		event      *NormalizedPaymentEvent
		account    *models.Account
		want       string
		wantSource CredentialSource
	}{
		{
			name:       "event_credential_wins",
			event:      &NormalizedPaymentEvent{EncodedCredential: eventSecret},
			account:    &models.Account{PendingCredentialSecret: strPtr(accountSecret)},
			want:       "FromEvent1!",
			wantSource: CredentialFromEvent,
		},
		{
			name:       "account_pending_secret_next",
			event:      &NormalizedPaymentEvent{},
			account:    &models.Account{PendingCredentialSecret: strPtr(accountSecret)},
			want:       "FromAccount1!",
			wantSource: CredentialFromAccount,
		},
		{
			name:       "undecodable_event_credential_falls_through",
			event:      &NormalizedPaymentEvent{EncodedCredential: "!!! not base64 !!!"},
			account:    &models.Account{PendingCredentialSecret: strPtr(accountSecret)},
			want:       "FromAccount1!",
			wantSource: CredentialFromAccount,
		},
		{
			name:       "nothing_available_generates",
			event:      &NormalizedPaymentEvent{},
			account:    &models.Account{},
			wantSource: CredentialGenerated,
		},
		{
			name:       "nil_inputs_generate",
			event:      nil,
			account:    nil,
			wantSource: CredentialGenerated,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			secret, source := ResolveCredential(tc.event, tc.account)
			assert.Equal(t, tc.wantSource, source)
			if tc.want != "" {
				assert.Equal(t, tc.want, secret)
			} else {
				assert.NotEmpty(t, secret)
			}
		})
	}
}

func TestDecodeTransportSecretVariants(t *testing.T) {
	plain := "S3nha#Forte_2026"

	variants := map[string]string{
		"std":         base64.StdEncoding.EncodeToString([]byte(plain)),
		"std_raw":     base64.RawStdEncoding.EncodeToString([]byte(plain)),
		"url":         base64.URLEncoding.EncodeToString([]byte(plain)),
		"url_raw":     base64.RawURLEncoding.EncodeToString([]byte(plain)),
		"whitespaced": "  " + base64.StdEncoding.EncodeToString([]byte(plain)) + "\n",
	}

	for name, encoded := range variants {
		t.Run(name, func(t *testing.T) {
			decoded, ok := decodeTransportSecret(encoded)
			require.True(t, ok)
			assert.Equal(t, plain, decoded)
		})
	}

	for name, encoded := range map[string]string{
		"empty":      "",
		"whitespace": "   ",
		"garbage":    "%%%%%",
	} {
		t.Run("reject_"+name, func(t *testing.T) {
			_, ok := decodeTransportSecret(encoded)
			assert.False(t, ok)
		})
	}
}

func TestGenerateSecretPolicy(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		secret := generateSecret(generatedSecretLength)
		require.Len(t, secret, generatedSecretLength)
		assert.True(t, strings.ContainsAny(secret, lowerChars), "missing lowercase in %q", secret)
		assert.True(t, strings.ContainsAny(secret, upperChars), "missing uppercase in %q", secret)
		assert.True(t, strings.ContainsAny(secret, digitChars), "missing digit in %q", secret)
		assert.True(t, strings.ContainsAny(secret, symbolChars), "missing symbol in %q", secret)
		assert.False(t, seen[secret], "generated secrets must not repeat")
		seen[secret] = true
	}
}

func TestGenerateSecretEnforcesMinimumLength(t *testing.T) {
	assert.Len(t, generateSecret(4), 12)
}
