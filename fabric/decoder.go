package fabric

import (
	"github.com/soclab/wbsim/bus"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Decoder demultiplexes shared-bus transactions to the target whose
// address window contains the transaction address. Addresses forwarded to
// a target are rebased to the target's window, and the target's response
// is returned untouched. Transactions outside every window terminate with
// a synthesized bus error; the decoder never fabricates data for a mapped
// target.
type Decoder struct {
	m      bus.AddressMap[bus.Target]
	sealed bool
	log    *logrus.Logger
}

// NewDecoder creates an empty decoder.
func NewDecoder(opts ...Option) *Decoder {
	o := applyOptions(opts)
	return &Decoder{log: o.log}
}

// Add registers target under [base, base+size). Registration fails once
// the decoder has started operating, and for windows that overlap an
// existing registration.
func (d *Decoder) Add(target bus.Target, name string, base, size uint64) error {
	if d.sealed {
		return &LateRegistrationError{Component: "decoder", Name: name}
	}
	return d.m.Add(target, name, base, size)
}

// Seal closes registration. The first Access seals implicitly.
func (d *Decoder) Seal() { d.sealed = true }

// Regions returns the registered windows in ascending base order.
func (d *Decoder) Regions() []bus.Region { return d.m.Regions() }

// Access routes one transaction. Decoder implements bus.Target so a
// decoder can itself be registered as a window of another decoder.
func (d *Decoder) Access(req bus.Request) bus.Response {
	d.sealed = true

	target, local, ok := d.m.Route(req.Addr)
	if !ok {
		d.log.WithFields(logrus.Fields{
			"addr":  fmtAddr(req.Addr),
			"write": req.IsWrite,
		}).Debug("bus error: unmapped address")
		return bus.BusError()
	}

	fwd := req
	fwd.Addr = local
	return target.Access(fwd)
}

// CsrDecoder is the decoder for the narrow CSR sub-bus. It routes
// byte-granularity beats over window-local CSR addresses; there is no
// byte-lane masking at this level. Unmapped beats terminate with the same
// synthesized error as the wide decoder.
type CsrDecoder struct {
	m      bus.AddressMap[bus.BeatTarget]
	sealed bool
	log    *logrus.Logger
}

// NewCsrDecoder creates an empty CSR decoder.
func NewCsrDecoder(opts ...Option) *CsrDecoder {
	o := applyOptions(opts)
	return &CsrDecoder{log: o.log}
}

// Add registers a CSR target under [base, base+size) of the sub-bus
// address space.
func (d *CsrDecoder) Add(target bus.BeatTarget, name string, base, size uint64) error {
	if d.sealed {
		return &LateRegistrationError{Component: "csr decoder", Name: name}
	}
	return d.m.Add(target, name, base, size)
}

// Seal closes registration. The first Beat seals implicitly.
func (d *CsrDecoder) Seal() { d.sealed = true }

// Regions returns the registered windows in ascending base order.
func (d *CsrDecoder) Regions() []bus.Region { return d.m.Regions() }

// Beat routes one narrow transaction.
func (d *CsrDecoder) Beat(req bus.BeatRequest) bus.BeatResponse {
	d.sealed = true

	target, local, ok := d.m.Route(req.Addr)
	if !ok {
		d.log.WithFields(logrus.Fields{
			"addr":  fmtAddr(req.Addr),
			"write": req.IsWrite,
		}).Debug("csr bus error: unmapped address")
		return bus.BeatResponse{Ack: true, Err: true}
	}

	fwd := req
	fwd.Addr = local
	return target.Beat(fwd)
}
