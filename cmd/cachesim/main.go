// Command cachesim replays memory access traces through a set-associative
// cache simulator.
//
// Usage:
//
//	cachesim run [flags] <trace>
//	cachesim verify [flags] <trace>
//	cachesim bench [flags]
//	cachesim config [flags]
//
// The cache is configured from, in increasing priority, the built-in
// defaults, a JSON file given with --config, CACHESIM_* environment
// variables (optionally read from a .env file) and command-line flags.
//
// Example:
//
//	# Replay a trace on a 4KB 8-way LRU cache and flush at the end
//	cachesim run --size 4096 --ways 8 --policy lru --flush trace.txt
//
//	# Compare LRU behaviour against the reference model
//	cachesim verify trace.txt
//
//	# Run the synthetic workloads and emit JSON
//	cachesim bench --json > results.json
package main

func main() {
	Execute()
}
