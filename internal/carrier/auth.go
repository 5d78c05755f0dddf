package carrier

import (
	"crypto/subtle"

	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

// Authenticator checks the shared-secret signature on inbound webhook
// requests. The setup handshake is the only unauthenticated event.
type Authenticator struct {
	secret string
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// VerifySignature rejects non-handshake events whose signature header does
// not match the shared secret. The comparison is constant time.
func (a *Authenticator) VerifySignature(event enums.CarrierEvent, signature string) error {
	if !event.RequiresSignature() {
		return nil
	}
	if a == nil || a.secret == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "carrier webhook secret not configured")
	}
	if subtle.ConstantTimeCompare([]byte(signature), []byte(a.secret)) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}
	return nil
}
