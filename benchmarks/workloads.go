package benchmarks

import (
	"math/rand/v2"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/trace"
)

// GetWorkloads returns the standard set of synthetic workloads.
// Each workload stresses a specific cache characteristic.
func GetWorkloads() []Workload {
	return []Workload{
		sequentialRead(),
		sequentialWrite(),
		blockStride(),
		workingSet(),
		conflictThrash(),
		matrixTranspose(),
		randomMixed(),
	}
}

// GetCoreWorkloads returns a small set for quick checks: spatial locality,
// temporal locality and conflict misses.
func GetCoreWorkloads() []Workload {
	return []Workload{
		sequentialRead(),
		workingSet(),
		conflictThrash(),
	}
}

// 1. Sequential Read - every byte of four cache capacities, in order
func sequentialRead() Workload {
	return Workload{
		Name:        "sequential_read",
		Description: "Byte-by-byte reads over 4x the capacity - spatial locality",
		Generate: func(c cache.Config, _ *rand.Rand) []trace.Access {
			n := uint64(4 * c.Size)
			accesses := make([]trace.Access, 0, n)
			for addr := uint64(0); addr < n; addr++ {
				accesses = append(accesses, trace.Read(addr))
			}
			return accesses
		},
	}
}

// 2. Sequential Write - every byte of two cache capacities, in order
func sequentialWrite() Workload {
	return Workload{
		Name:        "sequential_write",
		Description: "Byte-by-byte writes over 2x the capacity - write policy cost",
		Generate: func(c cache.Config, _ *rand.Rand) []trace.Access {
			n := uint64(2 * c.Size)
			accesses := make([]trace.Access, 0, n)
			for addr := uint64(0); addr < n; addr++ {
				accesses = append(accesses, trace.Write(addr, byte(addr)))
			}
			return accesses
		},
	}
}

// 3. Block Stride - one read per block, never reusing a block
func blockStride() Workload {
	return Workload{
		Name:        "block_stride",
		Description: "One read per block over 4x the capacity - compulsory misses",
		Generate: func(c cache.Config, _ *rand.Rand) []trace.Access {
			bs := uint64(c.BlockSize)
			n := uint64(4*c.Size) / bs
			accesses := make([]trace.Access, 0, n)
			for i := uint64(0); i < n; i++ {
				accesses = append(accesses, trace.Read(i*bs))
			}
			return accesses
		},
	}
}

// 4. Working Set - repeated passes over half the capacity
func workingSet() Workload {
	return Workload{
		Name:        "working_set",
		Description: "8 passes over half the capacity, one read per block - temporal locality",
		Generate: func(c cache.Config, _ *rand.Rand) []trace.Access {
			bs := uint64(c.BlockSize)
			blocks := uint64(c.Size/2) / bs
			accesses := make([]trace.Access, 0, 8*blocks)
			for pass := 0; pass < 8; pass++ {
				for i := uint64(0); i < blocks; i++ {
					accesses = append(accesses, trace.Read(i*bs))
				}
			}
			return accesses
		},
	}
}

// 5. Conflict Thrash - associativity+1 blocks that all map to set 0
func conflictThrash() Workload {
	return Workload{
		Name:        "conflict_thrash",
		Description: "Cycles associativity+1 blocks through one set - conflict misses",
		Generate: func(c cache.Config, _ *rand.Rand) []trace.Access {
			setSpan := uint64(c.NumSets() * c.BlockSize)
			ways := uint64(c.Associativity + 1)
			accesses := make([]trace.Access, 0, 64*ways)
			for pass := 0; pass < 64; pass++ {
				for tag := uint64(0); tag < ways; tag++ {
					accesses = append(accesses, trace.Read(tag*setSpan))
				}
			}
			return accesses
		},
	}
}

// 6. Matrix Transpose - row-major reads of A, column-major writes of B
func matrixTranspose() Workload {
	const n = 64

	return Workload{
		Name:        "matrix_transpose",
		Description: "B[j][i] = A[i][j] on 64x64 byte matrices - mixed strides",
		Generate: func(_ cache.Config, _ *rand.Rand) []trace.Access {
			const a, b = 0x10000, 0x20000
			accesses := make([]trace.Access, 0, 2*n*n)
			for i := uint64(0); i < n; i++ {
				for j := uint64(0); j < n; j++ {
					accesses = append(accesses,
						trace.Read(a+i*n+j),
						trace.Write(b+j*n+i, byte(i^j)))
				}
			}
			return accesses
		},
	}
}

// 7. Random Mixed - uniform addresses, one write in four, mixed policies
func randomMixed() Workload {
	return Workload{
		Name:        "random_mixed",
		Description: "Uniform accesses over 16x the capacity, 25% writes - worst case",
		Generate: func(c cache.Config, rng *rand.Rand) []trace.Access {
			span := uint64(16 * c.Size)
			accesses := make([]trace.Access, 0, 10000)
			for i := 0; i < 10000; i++ {
				addr := rng.Uint64N(span)
				switch rng.IntN(8) {
				case 0:
					accesses = append(accesses, trace.Write(addr, byte(i)))
				case 1:
					accesses = append(accesses, trace.Access{
						Op:          simulator.OpWrite,
						Addr:        addr,
						Value:       byte(i),
						WritePolicy: simulator.WriteThrough,
						MissPolicy:  simulator.NoWriteAllocate,
					})
				default:
					accesses = append(accesses, trace.Read(addr))
				}
			}
			return accesses
		},
	}
}
