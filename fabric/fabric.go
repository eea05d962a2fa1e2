// Package fabric implements the memory-mapped interconnect: an arbiter
// that serializes initiators onto the shared bus, decoders that route
// transactions by address, and the bridge that adapts wide register
// transactions onto the narrow CSR sub-bus.
//
// The fabric is synchronous. A transaction is one call that runs to
// completion before returning; there is no background concurrency and no
// queueing beyond the arbiter's round-robin pointer.
package fabric

import (
	"fmt"
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

// LateRegistrationError is returned when a port is added to a component
// after the fabric has started operating. Registration is a
// construction-time activity; a late Add is a misconfiguration, not a
// runtime fault.
type LateRegistrationError struct {
	Component string
	Name      string
}

func (e *LateRegistrationError) Error() string {
	return fmt.Sprintf("%s: registration of %q after start", e.Component, e.Name)
}

// Option configures a fabric component at construction time.
type Option func(*options)

type options struct {
	log *logrus.Logger
}

// WithLogger routes the component's trace logging (grants, routes, bus
// errors) to l. Components log at Debug level.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = discardLogger()
	}
	return o
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func fmtAddr(addr uint64) string {
	return fmt.Sprintf("0x%08X", addr)
}
