package fabric

import (
	"github.com/soclab/wbsim/bus"

	"gopkg.in/Sirupsen/logrus.v0"
)

// CsrBridge adapts one wide shared-bus transaction into an ordered
// sequence of byte beats on the CSR sub-bus. Beat k targets byte k of the
// word the transaction address falls in, in increasing-address order, and
// beat k+1 is never issued before beat k's response has been observed:
// CSR registers may be stateful and depend on issue order.
//
// Writes slice the data word least-significant byte first; a beat whose
// byte-select bit is clear is still issued, with Strobe clear, so the
// target governs the no-op semantics. Reads strobe every beat and
// concatenate the results least-significant beat first.
//
// If any beat reports an error the remaining beats are not issued and the
// wide response carries the error, with read data populated only up to
// the failing beat.
type CsrBridge struct {
	downstream bus.BeatTarget
	log        *logrus.Logger
}

// NewCsrBridge creates a bridge driving downstream, normally a
// CsrDecoder.
func NewCsrBridge(downstream bus.BeatTarget, opts ...Option) *CsrBridge {
	o := applyOptions(opts)
	return &CsrBridge{downstream: downstream, log: o.log}
}

// Access performs one wide transaction as a beat sequence. CsrBridge
// implements bus.Target, so the CSR region registers on the wide decoder
// like any other target.
func (b *CsrBridge) Access(req bus.Request) bus.Response {
	base := req.Addr &^ uint64(bus.DataBytes-1)

	var data uint32
	for k := 0; k < bus.DataBytes; k++ {
		beat := bus.BeatRequest{
			Addr:    base + uint64(k),
			IsWrite: req.IsWrite,
		}
		if req.IsWrite {
			beat.Strobe = req.Sel&(1<<k) != 0
			beat.Data = uint8(req.Data >> (8 * k))
		} else {
			beat.Strobe = true
		}

		resp := b.downstream.Beat(beat)
		if !req.IsWrite {
			data |= uint32(resp.Data) << (8 * k)
		}
		if resp.Err {
			b.log.WithFields(logrus.Fields{
				"addr": fmtAddr(base + uint64(k)),
				"beat": k,
			}).Debug("csr bridge: aborting after beat error")
			return bus.Response{Data: data, Ack: true, Err: true}
		}
	}

	if req.IsWrite {
		return bus.Response{Ack: true}
	}
	return bus.OK(data)
}
