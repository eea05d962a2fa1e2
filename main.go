// Package main provides the entry point for wbsim.
// wbsim models a Wishbone-style SoC interconnect: arbiter, address
// decoders, and the wide-to-CSR register bridge.
//
// For the full CLI, use: go run ./cmd/wbsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("wbsim - SoC bus fabric simulator")
	fmt.Println("")
	fmt.Println("Usage: wbsim <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run    Run a demonstration transaction trace")
	fmt.Println("  map    Print the reference memory map")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/wbsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/wbsim' instead.")
	}
}
