package cache_test

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
	"github.com/sarchlab/cachesim/replacement"
)

var _ = Describe("Config", func() {
	It("should derive the number of sets", func() {
		Expect(cache.DefaultConfig().NumSets()).To(Equal(8))
		Expect(cache.DefaultConfig().Validate()).To(Succeed())
	})

	It("should reject geometries without a set", func() {
		c := cache.Config{
			Size: 64, BlockSize: 32, Associativity: 4, Policy: replacement.LRU,
		}
		Expect(c.Validate()).To(MatchError(cache.ErrInvalidConfiguration))
		Expect(c.Validate()).To(MatchError(cache.ErrConfiguration))
	})

	It("should reject non-positive block sizes and associativity", func() {
		c := cache.DefaultConfig()
		c.BlockSize = 0
		Expect(c.Validate()).To(MatchError(cache.ErrInvalidConfiguration))

		c = cache.DefaultConfig()
		c.Associativity = -1
		Expect(c.Validate()).To(MatchError(cache.ErrInvalidConfiguration))
	})

	It("should reject geometries whose block span overflows", func() {
		c := cache.Config{
			Size: 1024, BlockSize: 1 << 32, Associativity: 1 << 32,
			Policy: replacement.LRU,
		}
		Expect(func() { _ = c.NumSets() }).NotTo(Panic())
		Expect(c.NumSets()).To(Equal(0))
		Expect(c.Validate()).To(MatchError(cache.ErrInvalidConfiguration))
	})

	It("should reject unknown policies before checking geometry", func() {
		c := cache.Config{Size: 0, BlockSize: 0, Associativity: 0, Policy: 17}
		Expect(c.Validate()).To(MatchError(cache.ErrInvalidPolicy))
	})

	It("should parse front-end parameters", func() {
		c, err := cache.ParseConfig(2048, 64, 2, "lru")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.NumSets()).To(Equal(16))
		Expect(c.Policy).To(Equal(replacement.LRU))

		_, err = cache.ParseConfig(2048, 64, 2, "LFU")
		Expect(err).To(MatchError(cache.ErrInvalidPolicy))

		_, err = cache.ParseConfig(16, 64, 2, "LRU")
		Expect(err).To(MatchError(cache.ErrInvalidConfiguration))
	})
})

var _ = Describe("Cache", func() {
	var (
		c   *cache.Cache
		mem *memory.Memory
	)

	BeforeEach(func() {
		mem = memory.New()
		config := cache.Config{
			Size:          1024,
			BlockSize:     32,
			Associativity: 4,
			Policy:        replacement.LRU,
		}
		c = cache.MustNew(config, nil)
	})

	It("should build the geometry", func() {
		Expect(c.NumSets()).To(Equal(8))
		Expect(c.BlockSize()).To(Equal(32))
		Expect(c.Associativity()).To(Equal(4))
		Expect(c.Sets()).To(HaveLen(8))
		Expect(c.Decoder().NumSets()).To(Equal(8))

		for i, set := range c.Sets() {
			Expect(set.Index()).To(Equal(i))
			Expect(set.Associativity()).To(Equal(4))
		}
	})

	It("should give every set its own policy instance", func() {
		Expect(c.Set(0).Policy()).NotTo(BeIdenticalTo(c.Set(1).Policy()))
	})

	It("should fail to build an invalid cache", func() {
		_, err := cache.New(cache.Config{Size: 1, BlockSize: 32, Associativity: 1}, nil)
		Expect(err).To(HaveOccurred())
		Expect(func() {
			cache.MustNew(cache.Config{Size: 1, BlockSize: 32, Associativity: 1}, nil)
		}).To(Panic())
	})

	It("should only evict blocks of the set being filled", func() {
		// Interleave two sets so that set 1 holds the globally oldest blocks.
		for tag := int64(0); tag < 4; tag++ {
			c.Set(1).Allocate(tag, c.NumSets(), mem)
		}
		for tag := int64(0); tag < 4; tag++ {
			c.Set(0).Allocate(tag, c.NumSets(), mem)
		}

		alloc := c.Set(0).Allocate(10, c.NumSets(), mem)

		Expect(alloc.Way).To(Equal(0))
		for tag := int64(0); tag < 4; tag++ {
			_, ok := c.Set(1).Lookup(tag)
			Expect(ok).To(BeTrue())
		}
		_, ok := c.Set(0).Lookup(0)
		Expect(ok).To(BeFalse())
	})

	DescribeTable("policy isolation under random traffic",
		func(kind replacement.Kind) {
			config := cache.Config{
				Size: 512, BlockSize: 16, Associativity: 4, Policy: kind,
			}
			c = cache.MustNew(config, rand.New(rand.NewPCG(3, 4)))
			rng := rand.New(rand.NewPCG(5, 6))

			for i := 0; i < 5000; i++ {
				addr := rng.Uint64N(1 << 16)
				dc := c.Decoder().Decode(addr)
				target := c.Set(dc.SetIndex)

				before := snapshot(c)

				if way, ok := target.Lookup(dc.Tag); ok {
					target.Touch(way)
					continue
				}

				target.Allocate(dc.Tag, c.NumSets(), mem)

				after := snapshot(c)
				for s := range before {
					if s == dc.SetIndex {
						continue
					}
					Expect(after[s]).To(Equal(before[s]))
				}

				seen := map[int64]bool{}
				for way := 0; way < target.Associativity(); way++ {
					b := target.Block(way)
					if !b.Valid {
						continue
					}
					Expect(seen[b.Tag]).To(BeFalse())
					seen[b.Tag] = true
				}
			}
		},
		Entry("LRU", replacement.LRU),
		Entry("FIFO", replacement.FIFO),
		Entry("Random", replacement.Random),
	)

	It("should flush dirty blocks of all sets", func() {
		c.Set(0).Allocate(1, c.NumSets(), mem)
		c.Set(5).Allocate(2, c.NumSets(), mem)

		c.Set(0).Block(0).Data[0] = 0x11
		c.Set(0).Block(0).Dirty = true
		c.Set(5).Block(0).Data[31] = 0x22
		c.Set(5).Block(0).Dirty = true

		Expect(c.Flush(mem)).To(Equal(2))
		Expect(mem.Read8((1*8 + 0) * 32)).To(Equal(byte(0x11)))
		Expect(mem.Read8((2*8+5)*32 + 31)).To(Equal(byte(0x22)))
		Expect(c.Flush(mem)).To(Equal(0))
	})
})

var _ = Describe("Statistics", func() {
	It("should report a zero hit rate before any access", func() {
		var s cache.Statistics
		Expect(s.HitRate()).To(Equal(0.0))
		Expect(s.MissRate()).To(Equal(0.0))
	})

	It("should keep hits plus misses equal to reads plus writes", func() {
		var s cache.Statistics
		s.RecordRead(true)
		s.RecordRead(false)
		s.RecordWrite(true)
		s.RecordWrite(true)

		Expect(s.Hits + s.Misses).To(Equal(s.Reads + s.Writes))
		Expect(s.HitRate()).To(Equal(0.75))
		Expect(s.MissRate()).To(Equal(0.25))
	})

	It("should count write-backs", func() {
		var s cache.Statistics
		s.RecordEviction()
		s.RecordWriteback()
		Expect(s.Evictions).To(Equal(uint64(1)))
		Expect(s.Writebacks).To(Equal(uint64(2)))
	})
})

func snapshot(c *cache.Cache) [][]cache.Block {
	sets := make([][]cache.Block, c.NumSets())
	for i, set := range c.Sets() {
		for way := 0; way < set.Associativity(); way++ {
			sets[i] = append(sets[i], set.Block(way).Clone())
		}
	}

	return sets
}
