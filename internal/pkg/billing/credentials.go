package billing

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"math/big"
	"strings"

	"github.com/viniciusbm/onboardly/app/models"
)

const generatedSecretLength = 16

const (
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars  = "23456789"
	symbolChars = "!@#$%&*+-_"
)

// CredentialSource records where a resolved credential came from. A generated
// credential is never surfaced to the user, so callers send a reset link for
// that source.
type CredentialSource int

const (
	CredentialFromEvent CredentialSource = iota
	CredentialFromAccount
	CredentialGenerated
)

// ResolveCredential produces a usable secret for identity creation, trying in
// strict priority order: the event's transport-encoded credential, the
// account's pending credential from registration, then a generated secret.
// It never fails; a generated secret only satisfies provider constraints.
func ResolveCredential(event *NormalizedPaymentEvent, account *models.Account) (string, CredentialSource) {
	if event != nil && event.EncodedCredential != "" {
		if decoded, ok := decodeTransportSecret(event.EncodedCredential); ok {
			return decoded, CredentialFromEvent
		}
		log.Printf("credential recovery: event credential is not valid base64, falling back")
	}

	if account != nil && account.PendingCredentialSecret != nil && *account.PendingCredentialSecret != "" {
		if decoded, ok := decodeTransportSecret(*account.PendingCredentialSecret); ok {
			return decoded, CredentialFromAccount
		}
		log.Printf("credential recovery: stored pending credential is not valid base64, falling back")
	}

	return generateSecret(generatedSecretLength), CredentialGenerated
}

// decodeTransportSecret tries standard then URL-safe base64, with and without
// padding. Different upstream paths encoded the secret differently.
func decodeTransportSecret(encoded string) (string, bool) {
	trimmed := strings.TrimSpace(encoded)
	if trimmed == "" {
		return "", false
	}
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if decoded, err := enc.DecodeString(trimmed); err == nil && len(decoded) > 0 {
			return string(decoded), true
		}
	}
	return "", false
}

// generateSecret builds a random secret guaranteed to mix both letter cases,
// digits and at least one symbol.
func generateSecret(length int) string {
	if length < 12 {
		length = 12
	}

	all := lowerChars + upperChars + digitChars + symbolChars
	out := make([]byte, length)
	// One guaranteed character from each class, the rest from the full set.
	out[0] = randomChar(lowerChars)
	out[1] = randomChar(upperChars)
	out[2] = randomChar(digitChars)
	out[3] = randomChar(symbolChars)
	for i := 4; i < length; i++ {
		out[i] = randomChar(all)
	}

	// Shuffle so the class positions are not predictable.
	for i := len(out) - 1; i > 0; i-- {
		j := randomInt(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func randomChar(set string) byte {
	return set[randomInt(len(set))]
}

func randomInt(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		// crypto/rand failing means the process is in no state to serve.
		panic(err)
	}
	return int(n.Int64())
}
