// Package soc composes the reference system-on-chip memory map on top of
// the fabric: a shared bus with flash, SRAM and debug windows, and a CSR
// sub-bus with GPIO, UART and identification windows behind the bridge.
//
// The CPU core, its debug transport and the peripheral internals are
// external collaborators. This package only places opaque targets in
// their windows so the fabric can be exercised end to end.
package soc

import (
	"fmt"

	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/soclab/wbsim/bus"
	"github.com/soclab/wbsim/csr"
	"github.com/soclab/wbsim/fabric"
	"github.com/soclab/wbsim/mem"
)

// Memory map of the reference composition.
const (
	// FlashBase is the instruction/data memory window. Boot code lives
	// BIOSOffset bytes in, leaving room for a bitstream below it.
	FlashBase  = 0x00000000
	BIOSOffset = 0x00100000

	// SRAMBase is the working-memory window.
	SRAMBase = 0x10000000

	// DebugBase is the debug unit window; a single target, no
	// sub-decoding.
	DebugBase = 0xa0000000

	// CSRBase routes into the CSR bridge. CSR sub-bus addresses are
	// relative to it.
	CSRBase     = 0xb0000000
	CSRGPIOBase = 0xb1000000
	CSRUARTBase = 0xb2000000
	CSRIDBase   = 0xb4000000
)

// Default window sizes.
const (
	DefaultFlashSize = 0x00400000 // 4 MiB
	DefaultSRAMSize  = 0x00000800 // 2 KiB
	DebugWindowSize  = 0x00001000
	CSRWindowSize    = 0x10000000 // everything from CSRBase to 0xc0000000
	PeriphWindowSize = 0x20       // GPIO and UART register windows
	IDWindowSize     = 0x8
)

// SoCID is the identification word exposed read-only in the ID window.
const SoCID uint32 = 0xCA7F100F

// SoC is the assembled composition. The fabric components and targets are
// exported so callers can attach initiators, preload memories, and
// inspect state in tests.
type SoC struct {
	Arbiter    *fabric.Arbiter
	Decoder    *fabric.Decoder
	Bridge     *fabric.CsrBridge
	CsrDecoder *fabric.CsrDecoder

	Flash *mem.RAM
	SRAM  *mem.RAM
	Debug *mem.RAM

	GPIO *csr.RegisterBlock
	UART *csr.RegisterBlock
	ID   *csr.RegisterBlock
}

// Option configures the composition.
type Option func(*config)

type config struct {
	flashSize uint64
	sramSize  uint64
	log       *logrus.Logger
}

// WithFlashSize overrides the flash window size.
func WithFlashSize(size uint64) Option {
	return func(c *config) { c.flashSize = size }
}

// WithSRAMSize overrides the SRAM window size.
func WithSRAMSize(size uint64) Option {
	return func(c *config) { c.sramSize = size }
}

// WithLogger routes fabric trace logging to l.
func WithLogger(l *logrus.Logger) Option {
	return func(c *config) { c.log = l }
}

// New builds the reference memory map. Registration errors (overlap,
// zero-size windows) abort construction; with the default constants they
// indicate a misconfigured option.
func New(opts ...Option) (*SoC, error) {
	cfg := config{
		flashSize: DefaultFlashSize,
		sramSize:  DefaultSRAMSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var fabricOpts []fabric.Option
	if cfg.log != nil {
		fabricOpts = append(fabricOpts, fabric.WithLogger(cfg.log))
	}

	s := &SoC{
		Flash: mem.NewRAM(cfg.flashSize),
		SRAM:  mem.NewRAM(cfg.sramSize),
		Debug: mem.NewRAM(DebugWindowSize),
		GPIO:  csr.NewRegisterBlock(PeriphWindowSize),
		UART:  csr.NewRegisterBlock(PeriphWindowSize),
		ID:    csr.NewReadOnlyBlock(idBytes()),
	}

	s.CsrDecoder = fabric.NewCsrDecoder(fabricOpts...)
	csrRegions := []struct {
		target bus.BeatTarget
		name   string
		base   uint64
		size   uint64
	}{
		{s.GPIO, "gpio_0", CSRGPIOBase - CSRBase, PeriphWindowSize},
		{s.UART, "uart_0", CSRUARTBase - CSRBase, PeriphWindowSize},
		{s.ID, "soc_id", CSRIDBase - CSRBase, IDWindowSize},
	}
	for _, r := range csrRegions {
		if err := s.CsrDecoder.Add(r.target, r.name, r.base, r.size); err != nil {
			return nil, fmt.Errorf("csr decoder: %w", err)
		}
	}

	s.Bridge = fabric.NewCsrBridge(s.CsrDecoder, fabricOpts...)

	s.Decoder = fabric.NewDecoder(fabricOpts...)
	wideRegions := []struct {
		target bus.Target
		name   string
		base   uint64
		size   uint64
	}{
		{s.Flash, "flash", FlashBase, cfg.flashSize},
		{s.SRAM, "sram", SRAMBase, cfg.sramSize},
		{s.Debug, "debug", DebugBase, DebugWindowSize},
		{s.Bridge, "csr", CSRBase, CSRWindowSize},
	}
	for _, r := range wideRegions {
		if err := s.Decoder.Add(r.target, r.name, r.base, r.size); err != nil {
			return nil, fmt.Errorf("decoder: %w", err)
		}
	}

	s.Arbiter = fabric.NewArbiter(s.Decoder, fabricOpts...)

	return s, nil
}

// AttachInitiator registers an initiator on the arbiter. Must happen
// before the fabric starts operating.
func (s *SoC) AttachInitiator(initiator bus.Initiator) error {
	return s.Arbiter.Add(initiator)
}

// Step performs at most one arbitrated transaction.
func (s *SoC) Step() bool { return s.Arbiter.Step() }

// Drain steps until no initiator has a pending request and returns the
// number of transactions performed.
func (s *SoC) Drain() int { return s.Arbiter.Drain() }

// Bus returns the shared bus as seen past the arbiter. Compositions that
// serialize requests themselves can access it directly; anything with
// more than one request stream must go through the arbiter.
func (s *SoC) Bus() bus.Target { return s.Decoder }

// Regions returns the wide decoder's windows in ascending base order.
func (s *SoC) Regions() []bus.Region { return s.Decoder.Regions() }

// LoadFlash preloads flash contents at offset, bypassing the bus. BIOS
// images go at BIOSOffset. Attaching firmware stays a collaborator
// responsibility; this is the hook for it.
func (s *SoC) LoadFlash(offset uint64, data []byte) error {
	return s.Flash.Load(offset, data)
}

// LoadSRAM preloads working memory at offset, bypassing the bus.
func (s *SoC) LoadSRAM(offset uint64, data []byte) error {
	return s.SRAM.Load(offset, data)
}

func idBytes() []byte {
	b := make([]byte, IDWindowSize)
	for k := 0; k < 4; k++ {
		b[k] = byte(SoCID >> (8 * k))
	}
	return b
}
