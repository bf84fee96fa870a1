// Package otp generates the 6-digit time-based one-time passwords
// (RFC 6238) that single-sign-on login pages ask for.
//
// The profile is fixed: HMAC-SHA1, a 30 second period starting at the
// Unix epoch, and 6 decimal digits. Secrets are Base32 strings as shown
// by authenticator setup pages; decoding is tolerant and skips any
// character outside the RFC 4648 alphabet instead of rejecting the
// secret.
package otp
