package otp

import (
	"fmt"

	pqotp "github.com/pquerna/otp"
)

// URIKey is the part of an otpauth:// URI that ssocode uses.
type URIKey struct {
	Secret  string
	Issuer  string
	Account string
}

// ParseURI extracts the secret from an otpauth://totp/ URI, the format
// carried by authenticator QR codes. URIs for any other algorithm, digit
// count, or period are rejected.
func ParseURI(raw string) (*URIKey, error) {
	key, err := pqotp.NewKeyFromURL(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse otpauth URI: %w", err)
	}

	if key.Type() != "totp" {
		return nil, fmt.Errorf("%w: type %q, only totp is supported", ErrUnsupportedProfile, key.Type())
	}
	if key.Algorithm() != pqotp.AlgorithmSHA1 {
		return nil, fmt.Errorf("%w: algorithm %s, only SHA1 is supported", ErrUnsupportedProfile, key.Algorithm())
	}
	if key.Digits() != pqotp.DigitsSix {
		return nil, fmt.Errorf("%w: %d digits, only 6 are supported", ErrUnsupportedProfile, key.Digits().Length())
	}
	if key.Period() != periodSeconds {
		return nil, fmt.Errorf("%w: period %ds, only 30s is supported", ErrUnsupportedProfile, key.Period())
	}

	secret := key.Secret()
	if len(Decode(secret)) == 0 {
		return nil, fmt.Errorf("%w: otpauth URI has no usable secret", ErrInvalidKey)
	}

	return &URIKey{
		Secret:  secret,
		Issuer:  key.Issuer(),
		Account: key.AccountName(),
	}, nil
}
