// Package main provides the entry point for tomasim.
// tomasim is a cycle-accurate Tomasulo scheduling simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/tomasim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("tomasim - Tomasulo Scheduling Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: tomasim <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run        Schedule a program and print its timing table")
	fmt.Println("  bench      Run the built-in programs")
	fmt.Println("  programs   List the built-in programs")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tomasim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tomasim' instead.")
	}
}
