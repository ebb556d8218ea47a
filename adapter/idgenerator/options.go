package idgenerator

import (
	"io"
	"time"
)

// WithReader sets the reader that will provide random bytes.
func WithReader(r io.Reader) Option {
	return func(igo *options) {
		igo.reader = r
	}
}

// WithClock sets the time source used by time-ordered identifiers.
func WithClock(now func() time.Time) Option {
	return func(igo *options) {
		igo.now = now
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*options)

type options struct {
	reader io.Reader
	now    func() time.Time
}
