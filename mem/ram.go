// Package mem provides word-wide memory targets for the shared bus.
package mem

import (
	akitamem "github.com/sarchlab/akita/v4/mem/mem"

	"github.com/soclab/wbsim/bus"
)

// RAM is a bus target backed by an Akita storage. Accesses are word-wide
// with byte-lane masking on writes; addresses are window-local (the
// decoder rebases before forwarding) and word-aligned by dropping the low
// address bits, as the hardware does.
type RAM struct {
	storage *akitamem.Storage
	size    uint64
}

// NewRAM creates a RAM of the given size in bytes. Size should be a
// multiple of the bus word size so the last word is fully backed.
func NewRAM(size uint64) *RAM {
	return &RAM{
		storage: akitamem.NewStorage(size),
		size:    size,
	}
}

// Size returns the capacity in bytes.
func (r *RAM) Size() uint64 { return r.size }

// Access performs one word transaction. Reads return the whole word;
// writes store only the byte lanes selected by req.Sel. Accesses past the
// end of storage terminate with a bus error.
func (r *RAM) Access(req bus.Request) bus.Response {
	addr := req.Addr &^ uint64(bus.DataBytes-1)
	if addr+bus.DataBytes > r.size {
		return bus.BusError()
	}

	if !req.IsWrite {
		data, err := r.storage.Read(addr, bus.DataBytes)
		if err != nil {
			return bus.BusError()
		}
		return bus.OK(wordOf(data))
	}

	// Read-modify-write keeps unselected lanes intact.
	word, err := r.storage.Read(addr, bus.DataBytes)
	if err != nil {
		return bus.BusError()
	}
	for k := 0; k < bus.DataBytes; k++ {
		if req.Sel&(1<<k) != 0 {
			word[k] = byte(req.Data >> (8 * k))
		}
	}
	if err := r.storage.Write(addr, word); err != nil {
		return bus.BusError()
	}
	return bus.Response{Ack: true}
}

// Load copies data into storage starting at offset, bypassing the bus.
// This is the firmware-attach path: preloading memory contents is a
// composition concern, not a fabric one.
func (r *RAM) Load(offset uint64, data []byte) error {
	return r.storage.Write(offset, data)
}

// Peek reads length bytes starting at offset, bypassing the bus.
func (r *RAM) Peek(offset, length uint64) ([]byte, error) {
	return r.storage.Read(offset, length)
}

// wordOf assembles a bus word from bytes, least significant byte first.
func wordOf(data []byte) uint32 {
	var word uint32
	for k := 0; k < bus.DataBytes && k < len(data); k++ {
		word |= uint32(data[k]) << (8 * k)
	}
	return word
}
