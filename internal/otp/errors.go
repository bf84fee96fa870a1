package otp

import "errors"

var (
	// ErrInvalidKey is returned when the secret decodes to zero bytes or the
	// HMAC implementation rejects the key.
	ErrInvalidKey = errors.New("invalid key")

	// ErrCryptoUnavailable is returned when HMAC-SHA1 cannot be used in the
	// running binary.
	ErrCryptoUnavailable = errors.New("HMAC-SHA1 unavailable")

	// ErrClockUnavailable is returned when no usable current time exists.
	ErrClockUnavailable = errors.New("current time unavailable")

	// ErrSkewTooLarge is returned by Verify for a skew above MaxSkew.
	ErrSkewTooLarge = errors.New("skew too large")

	// ErrUnsupportedProfile is returned for otpauth URIs that describe
	// anything other than a SHA1, 6 digit, 30 second TOTP.
	ErrUnsupportedProfile = errors.New("unsupported OTP profile")
)
