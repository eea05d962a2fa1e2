package fabric

import (
	"fmt"

	"github.com/soclab/wbsim/bus"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Arbiter multiplexes the request streams of several initiators onto one
// shared-bus target. At most one initiator holds the grant at a time, the
// grant covers a whole transaction (request through response), and the
// next grant goes to the first requesting initiator after the previous
// holder in registration order, so no persistent requester waits more
// than N-1 foreign transactions.
type Arbiter struct {
	downstream bus.Target
	initiators []bus.Initiator

	// last is the registration index of the most recent grant holder,
	// -1 before the first grant. grant is the index currently on the bus,
	// -1 while the bus is idle.
	last  int
	grant int

	grants uint64
	sealed bool
	log    *logrus.Logger
}

// NewArbiter creates an arbiter driving downstream, normally the shared
// bus decoder.
func NewArbiter(downstream bus.Target, opts ...Option) *Arbiter {
	o := applyOptions(opts)
	return &Arbiter{
		downstream: downstream,
		last:       -1,
		grant:      -1,
		log:        o.log,
	}
}

// Add registers an initiator port. Registration order fixes the
// round-robin order and is closed once the arbiter starts operating.
func (a *Arbiter) Add(initiator bus.Initiator) error {
	if a.sealed {
		return &LateRegistrationError{
			Component: "arbiter",
			Name:      fmt.Sprintf("initiator %d", len(a.initiators)),
		}
	}
	a.initiators = append(a.initiators, initiator)
	return nil
}

// Seal closes registration. The first Step seals implicitly.
func (a *Arbiter) Seal() { a.sealed = true }

// Initiators returns the number of registered initiator ports.
func (a *Arbiter) Initiators() int { return len(a.initiators) }

// Granted returns the registration index of the initiator currently
// holding the bus. ok is false while the bus is idle; outside of a target
// Access call that is always the case, since the grant is released the
// moment the response is observed.
func (a *Arbiter) Granted() (int, bool) { return a.grant, a.grant >= 0 }

// LastGrant returns the registration index of the most recent grant
// holder, or -1 before the first grant.
func (a *Arbiter) LastGrant() int { return a.last }

// Grants returns the number of transactions completed so far.
func (a *Arbiter) Grants() uint64 { return a.grants }

// Step samples every initiator's request line, grants at most one, and
// runs that transaction to completion: the request is forwarded verbatim
// to the shared bus and the response is delivered back to the granted
// initiator alone. It reports whether a transaction took place.
func (a *Arbiter) Step() bool {
	a.sealed = true

	n := len(a.initiators)
	for i := 1; i <= n; i++ {
		idx := (a.last + i) % n
		req, pending := a.initiators[idx].Pending()
		if !pending {
			continue
		}

		a.grant = idx
		a.grants++
		a.log.WithFields(logrus.Fields{
			"initiator": idx,
			"addr":      fmtAddr(req.Addr),
			"write":     req.IsWrite,
		}).Debug("grant")

		resp := a.downstream.Access(req)
		a.initiators[idx].Complete(resp)

		a.grant = -1
		a.last = idx
		return true
	}

	return false
}

// Drain steps until no initiator has a pending request, returning the
// number of transactions performed. A target that never acknowledges, or
// an initiator that requests forever, stalls Drain; bounding that is a
// watchdog's job, not the fabric's.
func (a *Arbiter) Drain() int {
	count := 0
	for a.Step() {
		count++
	}
	return count
}
