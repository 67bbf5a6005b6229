// Package main points at the cachesim CLI, which lives in ./cmd/cachesim.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "cachesim: use 'go run ./cmd/cachesim --help'")
	os.Exit(2)
}
