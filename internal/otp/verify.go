package otp

import (
	"fmt"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// MaxSkew bounds the drift Verify accepts. Each extra window costs two HMACs
// and doubles as two more codes an attacker may guess.
const MaxSkew = 10

// Verify reports whether code is valid for secret at t, accepting codes
// from up to skew windows before or after t.
//
// The check runs through an independent TOTP implementation on the
// canonical re-encoding of the tolerant-decoded secret, so it doubles as a
// cross-check of Generate.
func Verify(secret, code string, t time.Time, skew uint) (bool, error) {
	if skew > MaxSkew {
		return false, fmt.Errorf("%w: %d windows, at most %d allowed", ErrSkewTooLarge, skew, MaxSkew)
	}

	key := Decode(secret)
	if len(key) == 0 {
		return false, fmt.Errorf("%w: secret decodes to zero bytes", ErrInvalidKey)
	}
	if err := checkTime(t); err != nil {
		return false, err
	}

	ok, err := totp.ValidateCustom(code, EncodeSecret(key), t.UTC(), totp.ValidateOpts{
		Period:    periodSeconds,
		Skew:      skew,
		Digits:    pqotp.DigitsSix,
		Algorithm: pqotp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to validate code: %w", err)
	}
	return ok, nil
}
