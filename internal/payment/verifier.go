// Package payment authenticates gateway callbacks and creates gateway orders.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

// Verifier checks the signature a gateway attaches to a completed payment:
// hex(HMAC-SHA256(secret, gatewayOrderID + "|" + paymentID)).
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign computes the expected signature. Exposed for tests and tooling.
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify returns apperr.ErrPaymentSignature unless signature matches.
func (v *Verifier) Verify(gatewayOrderID, paymentID, signature string) error {
	if v == nil || len(v.secret) == 0 || gatewayOrderID == "" || paymentID == "" {
		return apperr.ErrPaymentSignature
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return apperr.ErrPaymentSignature
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	if !hmac.Equal(mac.Sum(nil), got) {
		return apperr.ErrPaymentSignature
	}
	return nil
}
