// Package signing computes HMAC signatures that let a webhook receiver check
// a submission came from a FormDrop client holding the shared secret.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Signer generates and validates submission signatures.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer. A nil Signer signs nothing.
func NewSigner(secret []byte) *Signer {
	if len(secret) == 0 {
		return nil
	}
	return &Signer{secret: secret}
}

// Sign returns the hex HMAC-SHA256 of "<submissionID>:<nonce>".
func (s *Signer) Sign(submissionID string, nonce int64) string {
	// hmac.New accepts a hash constructor (sha256.New) plus the secret key.
	mac := hmac.New(sha256.New, s.secret)
	// The canonical payload pairs the id with the _ts nonce the receiver also
	// sees in the body, so both sides can rebuild it.
	mac.Write([]byte(fmt.Sprintf("%s:%d", submissionID, nonce)))
	// hex.EncodeToString turns the raw MAC bytes into a header-safe token.
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate checks signature against the submission id and the raw nonce
// string as it appears in the payload.
func (s *Signer) Validate(submissionID, nonce, signature string) bool {
	// strconv.ParseInt converts the _ts form value back to an integer.
	n, err := strconv.ParseInt(nonce, 10, 64)
	if err != nil {
		return false
	}
	expected := s.Sign(submissionID, n)
	// hmac.Equal performs constant-time comparison to avoid timing attacks.
	return hmac.Equal([]byte(expected), []byte(signature))
}
