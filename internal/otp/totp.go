package otp

import (
	"crypto"
	"crypto/hmac"
	_ "crypto/sha1"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	// Period is the lifetime of a single code.
	Period = 30 * time.Second

	// Digits is the length of a generated code.
	Digits = 6

	periodSeconds = 30
	modulus       = 1_000_000
)

// Code is a generated one-time password and the window it belongs to.
type Code struct {
	Value     string
	Counter   uint64
	ValidFrom time.Time
	ExpiresAt time.Time
}

// Remaining returns how long the code stays valid after t.
func (c Code) Remaining(t time.Time) time.Duration {
	d := c.ExpiresAt.Sub(t)
	if d < 0 {
		return 0
	}
	return d
}

// Counter returns the time step t falls into.
func Counter(t time.Time) uint64 {
	return uint64(t.Unix()) / periodSeconds
}

// Remaining returns the time left in the window t falls into.
func Remaining(t time.Time) time.Duration {
	return windowStart(Counter(t) + 1).Sub(t)
}

// Generate returns the code for key at nowSeconds (Unix time).
func Generate(key []byte, nowSeconds int64) (string, error) {
	if nowSeconds < 0 {
		return "", fmt.Errorf("%w: timestamp %d precedes the Unix epoch", ErrClockUnavailable, nowSeconds)
	}
	return HOTP(key, uint64(nowSeconds)/periodSeconds)
}

// HOTP returns the RFC 4226 code for key at counter.
func HOTP(key []byte, counter uint64) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: secret decodes to zero bytes", ErrInvalidKey)
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	sum, err := sign(key, msg[:])
	if err != nil {
		return "", err
	}

	offset := sum[len(sum)-1] & 0x0F
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF

	return fmt.Sprintf("%0*d", Digits, value%modulus), nil
}

// CodeAt decodes secret and generates the code for t.
func CodeAt(secret string, t time.Time) (Code, error) {
	if err := checkTime(t); err != nil {
		return Code{}, err
	}

	value, err := Generate(Decode(secret), t.Unix())
	if err != nil {
		return Code{}, err
	}

	counter := Counter(t)
	return Code{
		Value:     value,
		Counter:   counter,
		ValidFrom: windowStart(counter),
		ExpiresAt: windowStart(counter + 1),
	}, nil
}

// sign computes HMAC-SHA1(key, msg). Restricted crypto modes (FIPS 140-only)
// panic on short keys or on SHA-1; that surfaces as an error here.
func sign(key, msg []byte) (sum []byte, err error) {
	if !crypto.SHA1.Available() {
		return nil, ErrCryptoUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			sum = nil
			err = hmacPanicError(r)
		}
	}()

	mac := hmac.New(crypto.SHA1.New, key)
	mac.Write(msg)
	return mac.Sum(nil), nil
}

// hmacPanicError maps a panic from crypto/hmac to an error. Only the key
// length rejection is the key's fault; anything else means the hash itself
// is refused.
func hmacPanicError(r any) error {
	if msg := fmt.Sprint(r); strings.Contains(msg, "keys shorter") {
		return fmt.Errorf("%w: %s", ErrInvalidKey, msg)
	}
	return fmt.Errorf("%w: %v", ErrCryptoUnavailable, r)
}

func windowStart(counter uint64) time.Time {
	return time.Unix(int64(counter*periodSeconds), 0).UTC()
}

func checkTime(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: clock returned the zero time", ErrClockUnavailable)
	}
	if t.Unix() < 0 {
		return fmt.Errorf("%w: %s precedes the Unix epoch", ErrClockUnavailable, t.Format(time.RFC3339))
	}
	return nil
}
