package tracing

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/simulator"
)

// CSVRecorder is a hook that stores every access into a CSV file.
type CSVRecorder struct {
	lock sync.Mutex

	path  string
	runID string
	file  *os.File
	seq   uint64

	records    []AccessRecord
	bufferSize int
}

// NewCSVRecorder creates a CSVRecorder. The ".csv" suffix is added to path.
// An empty path picks a unique name.
func NewCSVRecorder(path string) *CSVRecorder {
	runID := xid.New().String()
	if path == "" {
		path = "cachesim_trace_" + runID
	}

	return &CSVRecorder{
		path:       path,
		runID:      runID,
		bufferSize: 1000,
	}
}

// Path returns the name of the CSV file.
func (r *CSVRecorder) Path() string {
	return r.path + ".csv"
}

// RunID identifies the recording.
func (r *CSVRecorder) RunID() string {
	return r.runID
}

// Init creates the CSV file. It fails if the file already exists. Buffered
// records are flushed when the program exits through atexit.
func (r *CSVRecorder) Init() error {
	filename := r.Path()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	r.file = file

	_, err = fmt.Fprintf(file,
		"run_id, seq, op, address, tag, set, offset, hit, value, way, "+
			"evicted, evicted_tag, evicted_dirty, write_policy, miss_policy\n")
	if err != nil {
		return err
	}

	atexit.Register(func() {
		if err := r.Close(); err != nil {
			panic(err)
		}
	})

	return nil
}

// Func buffers access results.
func (r *CSVRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != simulator.HookPosAccess {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.records = append(r.records,
		newAccessRecord(r.runID, r.seq, ctx.Item.(simulator.AccessResult)))
	r.seq++

	if len(r.records) >= r.bufferSize {
		r.flush()
	}
}

// Flush writes the buffered records to the file.
func (r *CSVRecorder) Flush() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.flush()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (r *CSVRecorder) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.file == nil {
		return nil
	}

	r.flush()

	err := r.file.Close()
	r.file = nil

	return err
}

func (r *CSVRecorder) flush() {
	if r.file == nil {
		return
	}

	for _, rec := range r.records {
		_, err := fmt.Fprintf(r.file,
			"%s, %d, %s, 0x%x, %d, %d, %d, %t, 0x%02x, %d, %t, %d, %t, %s, %s\n",
			rec.RunID,
			rec.Seq,
			rec.Op,
			rec.Address,
			rec.Tag,
			rec.SetIndex,
			rec.Offset,
			rec.Hit,
			rec.Value,
			rec.Way,
			rec.Evicted,
			rec.EvictedTag,
			rec.EvictedDirty,
			rec.WritePolicy,
			rec.MissPolicy,
		)
		if err != nil {
			panic(err)
		}
	}

	r.records = nil
}
