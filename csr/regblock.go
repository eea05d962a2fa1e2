// Package csr provides simple register targets for the narrow CSR
// sub-bus. These are composition and test collaborators; real peripheral
// behavior lives outside the fabric.
package csr

import (
	"github.com/soclab/wbsim/bus"
)

// RegisterBlock is a window of byte registers on the CSR sub-bus. A write
// beat takes effect only when strobed and the block is writable; an
// unstrobed or read-only write is acknowledged as a no-op, which is the
// behavior the bridge relies on for masked-off byte lanes.
type RegisterBlock struct {
	regs     []byte
	readOnly bool
}

// NewRegisterBlock creates a writable block of size byte registers,
// initialized to zero.
func NewRegisterBlock(size uint64) *RegisterBlock {
	return &RegisterBlock{regs: make([]byte, size)}
}

// NewReadOnlyBlock creates a block holding init that ignores all writes.
// Identification registers are built this way.
func NewReadOnlyBlock(init []byte) *RegisterBlock {
	regs := make([]byte, len(init))
	copy(regs, init)
	return &RegisterBlock{regs: regs, readOnly: true}
}

// Size returns the window size in bytes.
func (b *RegisterBlock) Size() uint64 { return uint64(len(b.regs)) }

// Beat performs one byte transaction. Beats past the end of the block
// terminate with an error.
func (b *RegisterBlock) Beat(req bus.BeatRequest) bus.BeatResponse {
	if req.Addr >= uint64(len(b.regs)) {
		return bus.BeatResponse{Ack: true, Err: true}
	}

	if req.IsWrite {
		if req.Strobe && !b.readOnly {
			b.regs[req.Addr] = req.Data
		}
		return bus.BeatResponse{Ack: true}
	}

	return bus.BeatResponse{Data: b.regs[req.Addr], Ack: true}
}

// Peek returns the register at offset without bus semantics.
func (b *RegisterBlock) Peek(offset uint64) byte { return b.regs[offset] }

// Poke sets the register at offset without bus semantics, read-only or
// not. Tests and composition code use it to seed state.
func (b *RegisterBlock) Poke(offset uint64, value byte) { b.regs[offset] = value }
