package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/replacement"
	"github.com/sarchlab/cachesim/simulator"
)

func setenv(key, value string) {
	old, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())

	DeferCleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should default to a 1KB 4-way FIFO write-back cache", func() {
		c := config.DefaultConfig()

		Expect(c.Size).To(Equal(1024))
		Expect(c.BlockSize).To(Equal(32))
		Expect(c.Associativity).To(Equal(4))
		Expect(c.Policy).To(Equal(replacement.FIFO))
		Expect(c.WritePolicy).To(Equal(simulator.WriteBack))
		Expect(c.MissPolicy).To(Equal(simulator.WriteAllocate))
		Expect(c.Validate()).To(Succeed())
		Expect(c.Cache()).To(Equal(cache.DefaultConfig()))
	})

	It("should save and load a config file", func() {
		path := filepath.Join(dir, "cache.json")

		c := config.DefaultConfig()
		c.Size = 4096
		c.Policy = replacement.LRU
		c.WritePolicy = simulator.WriteThrough
		c.MissPolicy = simulator.NoWriteAllocate
		c.Seed = 7
		Expect(c.SaveConfig(path)).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"policy": "LRU"`))
		Expect(string(data)).To(ContainSubstring(`"write_policy": "WRITE_THROUGH"`))

		loaded, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(c))
	})

	It("should keep defaults for fields missing from the file", func() {
		path := filepath.Join(dir, "partial.json")
		Expect(os.WriteFile(path, []byte(`{"associativity": 2, "policy": "random"}`), 0644)).
			To(Succeed())

		c, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Associativity).To(Equal(2))
		Expect(c.Policy).To(Equal(replacement.Random))
		Expect(c.Size).To(Equal(1024))
		Expect(c.WritePolicy).To(Equal(simulator.WriteBack))
	})

	It("should report unreadable and malformed files", func() {
		_, err := config.LoadConfig(filepath.Join(dir, "missing.json"))
		Expect(err).To(MatchError(os.ErrNotExist))

		path := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(path, []byte(`{"policy": "MRU"}`), 0644)).To(Succeed())
		_, err = config.LoadConfig(path)
		Expect(err).To(MatchError(replacement.ErrUnknownPolicy))
	})

	It("should reject geometries without sets", func() {
		c := config.DefaultConfig()
		c.Size = 64

		Expect(c.Validate()).To(MatchError(cache.ErrInvalidConfiguration))
	})

	It("should clone", func() {
		c := config.DefaultConfig()
		clone := c.Clone()
		clone.Size = 1

		Expect(c.Size).To(Equal(1024))
	})

	It("should build a simulator", func() {
		c := config.DefaultConfig()
		c.Policy = replacement.LRU

		s, err := c.Builder().Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Config()).To(Equal(c.Cache()))
		Expect(s.Read(0).Value).To(Equal(byte(0xAA)))
	})

	Describe("Environment", func() {
		It("should override fields from CACHESIM variables", func() {
			setenv(config.EnvSize, "2048")
			setenv(config.EnvPolicy, "lru")
			setenv(config.EnvWritePolicy, "write-through")
			setenv(config.EnvMissPolicy, "NWA")
			setenv(config.EnvSeed, "0x10")

			c := config.DefaultConfig()
			Expect(c.ApplyEnv()).To(Succeed())

			Expect(c.Size).To(Equal(2048))
			Expect(c.BlockSize).To(Equal(32))
			Expect(c.Policy).To(Equal(replacement.LRU))
			Expect(c.WritePolicy).To(Equal(simulator.WriteThrough))
			Expect(c.MissPolicy).To(Equal(simulator.NoWriteAllocate))
			Expect(c.Seed).To(Equal(uint64(16)))
		})

		It("should leave the config alone on a malformed variable", func() {
			setenv(config.EnvSize, "4096")
			setenv(config.EnvAssociativity, "many")

			c := config.DefaultConfig()
			Expect(c.ApplyEnv()).NotTo(Succeed())
			Expect(c).To(Equal(config.DefaultConfig()))
		})

		It("should load variables from an env file", func() {
			path := filepath.Join(dir, "test.env")
			Expect(os.WriteFile(path, []byte("CACHESIM_BLOCK_SIZE=64\n"), 0644)).To(Succeed())
			DeferCleanup(os.Unsetenv, config.EnvBlockSize)

			Expect(config.LoadEnv(path)).To(Succeed())

			c := config.DefaultConfig()
			Expect(c.ApplyEnv()).To(Succeed())
			Expect(c.BlockSize).To(Equal(64))
		})

		It("should fail on a named env file that does not exist", func() {
			Expect(config.LoadEnv(filepath.Join(dir, "none.env"))).
				To(MatchError(os.ErrNotExist))
		})
	})
})
