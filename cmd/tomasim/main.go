// Command tomasim schedules floating-point programs with Tomasulo's
// algorithm and reports when every instruction issues, executes and writes
// back.
//
// Usage:
//
//	go run ./cmd/tomasim run program.txt
//	go run ./cmd/tomasim run --program reference_loop
//	go run ./cmd/tomasim bench --format csv
//	go run ./cmd/tomasim programs
package main

func main() {
	Execute()
}
