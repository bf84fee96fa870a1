package otp

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the host wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// Generator produces codes against an injected clock. It holds no other
// state; the clock is read once per call.
type Generator struct {
	clock Clock
}

// NewGenerator returns a Generator reading clock. A nil clock means the
// system clock.
func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Generator{clock: clock}
}

// Now reads the clock and rejects unusable values.
func (g *Generator) Now() (time.Time, error) {
	t := g.clock.Now()
	if err := checkTime(t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Code returns the current code for secret.
func (g *Generator) Code(secret string) (Code, error) {
	t, err := g.Now()
	if err != nil {
		return Code{}, err
	}
	return CodeAt(secret, t)
}
