// Package main provides the wbsim command line interface.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/soclab/wbsim/bus"
	"github.com/soclab/wbsim/soc"
)

var cli struct {
	Run RunCmd `cmd:"" default:"1" help:"Run a demonstration transaction trace against the reference SoC."`
	Map MapCmd `cmd:"" help:"Print the reference memory map."`

	Log string `help:"Fabric trace log level." default:"warn" enum:"debug,info,warn,error"`
}

// RunCmd drives two scripted initiators through the arbiter so the trace
// shows arbitration, decoding, the CSR bridge and a bus error.
type RunCmd struct{}

// MapCmd prints the wide and CSR decoder windows.
type MapCmd struct{}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("wbsim"),
		kong.Description("SoC memory-mapped interconnect fabric simulator."),
		kong.UsageOnError(),
	)

	level, err := logrus.ParseLevel(cli.Log)
	ctx.FatalIfErrorf(err)
	logger := logrus.New()
	logger.Level = level

	ctx.FatalIfErrorf(ctx.Run(logger))
}

// scriptedInitiator replays a fixed request queue through its bus port.
type scriptedInitiator struct {
	name      string
	queue     []bus.Request
	responses []bus.Response
}

func (s *scriptedInitiator) Pending() (bus.Request, bool) {
	if len(s.queue) == 0 {
		return bus.Request{}, false
	}
	return s.queue[0], true
}

func (s *scriptedInitiator) Complete(resp bus.Response) {
	s.responses = append(s.responses, resp)
	s.queue = s.queue[1:]
}

// Run executes the demonstration trace.
func (c *RunCmd) Run(logger *logrus.Logger) error {
	system, err := soc.New(soc.WithLogger(logger))
	if err != nil {
		return err
	}

	cpu := &scriptedInitiator{
		name: "cpu",
		queue: []bus.Request{
			{Addr: soc.SRAMBase + 0x100, IsWrite: true, Data: 0xDEADBEEF, Sel: bus.SelAll},
			{Addr: soc.SRAMBase + 0x100},
			{Addr: soc.CSRIDBase},
			{Addr: 0x20000000},
		},
	}
	debug := &scriptedInitiator{
		name: "debug",
		queue: []bus.Request{
			{Addr: soc.CSRGPIOBase + 0x4, IsWrite: true, Data: 0x000000A5, Sel: 0x1},
			{Addr: soc.CSRGPIOBase + 0x4},
		},
	}

	for _, init := range []*scriptedInitiator{cpu, debug} {
		if err := system.AttachInitiator(init); err != nil {
			return err
		}
	}

	issued := map[*scriptedInitiator][]bus.Request{
		cpu:   append([]bus.Request(nil), cpu.queue...),
		debug: append([]bus.Request(nil), debug.queue...),
	}

	n := system.Drain()
	fmt.Printf("%d transactions completed\n\n", n)

	for _, init := range []*scriptedInitiator{cpu, debug} {
		fmt.Printf("initiator %s:\n", init.name)
		for i, resp := range init.responses {
			req := issued[init][i]
			op := "read "
			if req.IsWrite {
				op = "write"
			}
			status := "ok"
			if resp.Err {
				status = "bus error"
			}
			fmt.Printf("  %s 0x%08X -> data=0x%08X %s\n",
				op, req.Addr, resp.Data, status)
		}
	}

	return nil
}

// Run prints the memory map.
func (c *MapCmd) Run(logger *logrus.Logger) error {
	system, err := soc.New(soc.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Println("shared bus:")
	for _, r := range system.Decoder.Regions() {
		fmt.Printf("  %v\n", r)
	}
	fmt.Println("csr sub-bus (relative to csr base):")
	for _, r := range system.CsrDecoder.Regions() {
		fmt.Printf("  %v\n", r)
	}

	return nil
}
