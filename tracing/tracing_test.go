package tracing_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replacement"
	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/tracing"
)

var lruConfig = cache.Config{
	Size: 1024, BlockSize: 32, Associativity: 4, Policy: replacement.LRU,
}

// drive performs a small workload that touches every hook position.
func drive(s *simulator.Simulator) {
	for tag := uint64(0); tag < 4; tag++ {
		s.Write(tag*256, byte(tag), simulator.WriteBack, simulator.WriteAllocate)
	}
	s.Read(1024) // evicts tag 0, dirty
	s.Read(1024)
	s.Flush()
	Expect(s.Reconfigure(2048, 64, 2, "fifo")).To(Succeed())
	s.Write(5000, 1, simulator.WriteThrough, simulator.NoWriteAllocate)
}

var _ = Describe("LogTracer", func() {
	It("should print one line per event", func() {
		buf := &bytes.Buffer{}
		tracer := tracing.NewLogTracer(log.New(buf, "", 0))

		s := simulator.MakeBuilder().WithConfig(lruConfig).WithHook(tracer).MustBuild()
		drive(s)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(1 + 7 + 1 + 1 + 1))
		Expect(lines[0]).To(Equal("configure, 1024B, 32B blocks, 4 ways, LRU"))
		Expect(lines[1]).To(HavePrefix("WRITE, 0x0, set 0, tag 0, offset 0, way 0, miss"))
		Expect(buf.String()).To(ContainSubstring("evict, set 0, way 0, tag 0, 0x0"))
		Expect(buf.String()).To(ContainSubstring("READ, 0x400, set 0, tag 4, offset 0, way 0, hit"))
		Expect(buf.String()).To(ContainSubstring("flush, 3 blocks"))
		Expect(lines[len(lines)-1]).To(ContainSubstring("way -1, miss, 0x01"))
	})
})

var _ = Describe("CSVRecorder", func() {
	It("should write a row per access", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")
		recorder := tracing.NewCSVRecorder(path)
		Expect(recorder.Init()).To(Succeed())

		s := simulator.MakeBuilder().WithConfig(lruConfig).WithHook(recorder).MustBuild()
		drive(s)
		Expect(recorder.Close()).To(Succeed())
		Expect(recorder.Close()).To(Succeed())

		data, err := os.ReadFile(recorder.Path())
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(1 + 7))
		Expect(lines[0]).To(HavePrefix("run_id, seq, op"))
		Expect(lines[1]).To(HavePrefix(recorder.RunID() + ", 0, WRITE, 0x0,"))
		Expect(lines[5]).To(ContainSubstring(", READ, 0x400, 4, 0, 0, false, "))
		Expect(lines[5]).To(ContainSubstring(", true, 0, true, , "))
	})

	It("should refuse to overwrite a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")
		Expect(os.WriteFile(path+".csv", nil, 0644)).To(Succeed())

		Expect(tracing.NewCSVRecorder(path).Init()).NotTo(Succeed())
	})

	It("should give every recorder its own run ID", func() {
		a := tracing.NewCSVRecorder("")
		b := tracing.NewCSVRecorder("")
		Expect(a.RunID()).NotTo(BeEmpty())
		Expect(a.RunID()).NotTo(Equal(b.RunID()))
	})

	It("should name the default file before Init", func() {
		r := tracing.NewCSVRecorder("")
		Expect(r.Path()).To(Equal("cachesim_trace_" + r.RunID() + ".csv"))
	})
})

var _ = Describe("SQLiteRecorder", func() {
	It("should name the default database before Init", func() {
		r := tracing.NewSQLiteRecorder("")
		Expect(r.Path()).To(Equal("cachesim_trace_" + r.RunID() + ".sqlite3"))
	})

	It("should persist accesses and configurations", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")
		recorder := tracing.NewSQLiteRecorder(path)
		Expect(recorder.Init()).To(Succeed())

		s := simulator.MakeBuilder().WithConfig(lruConfig).WithHook(recorder).MustBuild()
		drive(s)
		recorder.Flush()

		s.Read(0)
		Expect(recorder.Close()).To(Succeed())

		reader := tracing.NewSQLiteReader(recorder.Path())
		Expect(reader.Init()).To(Succeed())
		defer reader.Close()

		runs, err := reader.ListRuns()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(Equal([]string{recorder.RunID()}))

		accesses, err := reader.ListAccesses(recorder.RunID())
		Expect(err).NotTo(HaveOccurred())
		Expect(accesses).To(HaveLen(8))

		for i, a := range accesses {
			Expect(a.Seq).To(Equal(uint64(i)))
		}

		evicting := accesses[4]
		Expect(evicting.Op).To(Equal("READ"))
		Expect(evicting.Address).To(Equal(uint64(1024)))
		Expect(evicting.Tag).To(Equal(int64(4)))
		Expect(evicting.Hit).To(BeFalse())
		Expect(evicting.Evicted).To(BeTrue())
		Expect(evicting.EvictedDirty).To(BeTrue())

		bypass := accesses[6]
		Expect(bypass.Way).To(Equal(-1))
		Expect(bypass.WritePolicy).To(Equal("WRITE_THROUGH"))
		Expect(bypass.MissPolicy).To(Equal("NO_WRITE_ALLOCATE"))
		Expect(bypass.Value).To(Equal(byte(1)))

		configs, err := reader.ListConfigs(recorder.RunID())
		Expect(err).NotTo(HaveOccurred())
		Expect(configs).To(HaveLen(2))
		Expect(configs[0].Policy).To(Equal("LRU"))
		Expect(configs[0].Seq).To(Equal(uint64(0)))
		Expect(configs[1].Size).To(Equal(2048))
		Expect(configs[1].Policy).To(Equal("FIFO"))
		Expect(configs[1].Seq).To(Equal(uint64(6)))
	})

	It("should keep runs apart in a shared database", func() {
		path := filepath.Join(GinkgoT().TempDir(), "shared")

		var ids []string
		for i := 0; i < 2; i++ {
			recorder := tracing.NewSQLiteRecorder(path)
			Expect(recorder.Init()).To(Succeed())

			s := simulator.MakeBuilder().WithHook(recorder).MustBuild()
			for j := 0; j <= i; j++ {
				s.Read(uint64(j))
			}

			Expect(recorder.Close()).To(Succeed())
			ids = append(ids, recorder.RunID())
		}

		reader := tracing.NewSQLiteReader(path + ".sqlite3")
		Expect(reader.Init()).To(Succeed())
		defer reader.Close()

		runs, err := reader.ListRuns()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(ConsistOf(ids))

		second, err := reader.ListAccesses(ids[1])
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(HaveLen(2))
	})
})
