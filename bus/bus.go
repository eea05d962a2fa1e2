// Package bus defines the data model shared by every participant on the
// interconnect: requests, responses, port interfaces, and the address map.
package bus

// Bus geometry. The shared bus carries 32-bit data with byte granularity;
// the CSR sub-bus carries one byte per transaction.
const (
	// DataBits is the width of the shared bus data lines.
	DataBits = 32

	// DataBytes is the number of byte lanes on the shared bus.
	DataBytes = DataBits / 8

	// SelAll is the byte select mask covering every lane.
	SelAll = 1<<DataBytes - 1
)

// Request is one transaction as presented by an initiator. Addr is a byte
// address; Sel selects the byte lanes a write touches (bit i covers byte i,
// least significant byte first).
type Request struct {
	Addr    uint64
	IsWrite bool
	Data    uint32
	Sel     uint8
}

// Response is the outcome of one transaction. Ack reports that the
// transaction terminated; Err marks a bus error. A response with Err set
// still has Ack set: error termination is termination.
type Response struct {
	Data uint32
	Ack  bool
	Err  bool
}

// OK builds a successful response carrying data.
func OK(data uint32) Response {
	return Response{Data: data, Ack: true}
}

// BusError is the response synthesized for transactions that cannot be
// completed (unmapped address, or a target-reported fault).
func BusError() Response {
	return Response{Ack: true, Err: true}
}

// Target is a bus participant that owns an address window. Access performs
// one whole transaction; the address in req is local to the target's
// window (the decoder rebases before forwarding).
type Target interface {
	Access(req Request) Response
}

// Initiator is a bus participant that originates transactions. The arbiter
// samples Pending as the initiator's request line; when granted, the
// request is forwarded verbatim and the response is delivered through
// Complete before the grant is released.
type Initiator interface {
	Pending() (Request, bool)
	Complete(resp Response)
}

// BeatRequest is one narrow transaction on the CSR sub-bus. The CSR bus has
// no byte-lane masking; Strobe marks whether a write beat should take
// effect. The bridge issues masked-off write beats with Strobe clear, and
// the addressed register decides what, if anything, happens.
type BeatRequest struct {
	Addr    uint64
	IsWrite bool
	Strobe  bool
	Data    uint8
}

// BeatResponse is the outcome of one CSR beat.
type BeatResponse struct {
	Data uint8
	Ack  bool
	Err  bool
}

// BeatTarget is a CSR-bearing participant on the narrow sub-bus.
type BeatTarget interface {
	Beat(req BeatRequest) BeatResponse
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(req Request) Response

// Access calls f.
func (f TargetFunc) Access(req Request) Response { return f(req) }

// BeatTargetFunc adapts a function to the BeatTarget interface.
type BeatTargetFunc func(req BeatRequest) BeatResponse

// Beat calls f.
func (f BeatTargetFunc) Beat(req BeatRequest) BeatResponse { return f(req) }
