package tracing

import (
	"database/sql"
	"fmt"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/simulator"
)

// ConfigRecord is the persisted form of a reconfiguration. Seq is the
// sequence number of the first access made under the configuration.
type ConfigRecord struct {
	RunID         string
	Seq           uint64
	Size          int
	BlockSize     int
	Associativity int
	Policy        string
}

// SQLiteRecorder is a hook that stores accesses and reconfigurations into a
// SQLite database. Several runs may share one database; each is told apart
// by its run ID.
type SQLiteRecorder struct {
	*sql.DB

	lock sync.Mutex

	path            string
	runID           string
	seq             uint64
	accessStatement *sql.Stmt
	configStatement *sql.Stmt

	accesses  []AccessRecord
	configs   []ConfigRecord
	batchSize int
}

// NewSQLiteRecorder creates a SQLiteRecorder. The ".sqlite3" suffix is added
// to path. An empty path picks a unique name.
func NewSQLiteRecorder(path string) *SQLiteRecorder {
	runID := xid.New().String()
	if path == "" {
		path = "cachesim_trace_" + runID
	}

	return &SQLiteRecorder{
		path:      path,
		runID:     runID,
		batchSize: 10000,
	}
}

// Path returns the name of the database file.
func (r *SQLiteRecorder) Path() string {
	return r.path + ".sqlite3"
}

// RunID identifies the recording.
func (r *SQLiteRecorder) RunID() string {
	return r.runID
}

// Init opens the database and creates the tables if needed. Buffered records
// are flushed when the program exits through atexit.
func (r *SQLiteRecorder) Init() error {
	db, err := sql.Open("sqlite3", r.Path())
	if err != nil {
		return err
	}
	r.DB = db

	if err := r.createTables(); err != nil {
		return err
	}

	if err := r.prepareStatements(); err != nil {
		return err
	}

	atexit.Register(func() {
		if err := r.Close(); err != nil {
			panic(err)
		}
	})

	return nil
}

// Func buffers access results and configurations.
func (r *SQLiteRecorder) Func(ctx sim.HookCtx) {
	r.lock.Lock()
	defer r.lock.Unlock()

	switch ctx.Pos {
	case simulator.HookPosAccess:
		r.accesses = append(r.accesses,
			newAccessRecord(r.runID, r.seq, ctx.Item.(simulator.AccessResult)))
		r.seq++
	case simulator.HookPosConfigure:
		c := ctx.Item.(cache.Config)
		r.configs = append(r.configs, ConfigRecord{
			RunID:         r.runID,
			Seq:           r.seq,
			Size:          c.Size,
			BlockSize:     c.BlockSize,
			Associativity: c.Associativity,
			Policy:        c.Policy.String(),
		})
	default:
		return
	}

	if len(r.accesses)+len(r.configs) >= r.batchSize {
		r.flush()
	}
}

// Flush writes all the buffered records to the database.
func (r *SQLiteRecorder) Flush() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.flush()
}

// Close flushes and closes the database. Closing twice is a no-op.
func (r *SQLiteRecorder) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.DB == nil {
		return nil
	}

	r.flush()

	for _, stmt := range []*sql.Stmt{r.accessStatement, r.configStatement} {
		if stmt != nil {
			stmt.Close()
		}
	}

	err := r.DB.Close()
	r.DB = nil

	return err
}

func (r *SQLiteRecorder) flush() {
	if r.accessStatement == nil || r.configStatement == nil ||
		len(r.accesses)+len(r.configs) == 0 {
		return
	}

	tx, err := r.Begin()
	if err != nil {
		panic(err)
	}

	configStmt := tx.Stmt(r.configStatement)
	for _, c := range r.configs {
		_, err := configStmt.Exec(
			c.RunID, int64(c.Seq), c.Size, c.BlockSize, c.Associativity, c.Policy)
		if err != nil {
			panic(err)
		}
	}

	accessStmt := tx.Stmt(r.accessStatement)
	for _, a := range r.accesses {
		_, err := accessStmt.Exec(
			a.RunID,
			int64(a.Seq),
			a.Op,
			int64(a.Address),
			a.Tag,
			a.SetIndex,
			a.Offset,
			a.Hit,
			int(a.Value),
			a.Way,
			a.Evicted,
			a.EvictedTag,
			a.EvictedDirty,
			a.WritePolicy,
			a.MissPolicy,
		)
		if err != nil {
			panic(err)
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	r.configs = nil
	r.accesses = nil
}

func (r *SQLiteRecorder) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS access
		(
			run_id        VARCHAR(20) NOT NULL,
			seq           INTEGER     NOT NULL,
			op            VARCHAR(8)  NOT NULL,
			address       INTEGER     NOT NULL,
			tag           INTEGER     NOT NULL,
			set_index     INTEGER     NOT NULL,
			block_offset  INTEGER     NOT NULL,
			hit           BOOLEAN     NOT NULL,
			value         INTEGER     NOT NULL,
			way           INTEGER     NOT NULL,
			evicted       BOOLEAN     NOT NULL,
			evicted_tag   INTEGER     NOT NULL,
			evicted_dirty BOOLEAN     NOT NULL,
			write_policy  VARCHAR(20),
			miss_policy   VARCHAR(20)
		);`,
		`CREATE INDEX IF NOT EXISTS access_run_seq_index ON access (run_id, seq);`,
		`CREATE INDEX IF NOT EXISTS access_set_index ON access (set_index);`,
		`CREATE TABLE IF NOT EXISTS config
		(
			run_id        VARCHAR(20) NOT NULL,
			seq           INTEGER     NOT NULL,
			size          INTEGER     NOT NULL,
			block_size    INTEGER     NOT NULL,
			associativity INTEGER     NOT NULL,
			policy        VARCHAR(8)  NOT NULL
		);`,
	}

	for _, s := range stmts {
		if _, err := r.Exec(s); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return nil
}

func (r *SQLiteRecorder) prepareStatements() error {
	var err error

	r.accessStatement, err = r.Prepare(
		`INSERT INTO access VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	r.configStatement, err = r.Prepare(
		`INSERT INTO config VALUES (?, ?, ?, ?, ?, ?)`)

	return err
}

// SQLiteReader reads records written by a SQLiteRecorder.
type SQLiteReader struct {
	*sql.DB

	filename string
}

// NewSQLiteReader creates a SQLiteReader for the given database file.
func NewSQLiteReader(filename string) *SQLiteReader {
	return &SQLiteReader{filename: filename}
}

// Init opens the database.
func (r *SQLiteReader) Init() error {
	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		return err
	}

	r.DB = db

	return nil
}

// ListRuns returns the run IDs found in the database, oldest first.
func (r *SQLiteReader) ListRuns() ([]string, error) {
	rows, err := r.Query(`
		SELECT run_id FROM access
		UNION
		SELECT run_id FROM config
		ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListAccesses returns the accesses of one run in order.
func (r *SQLiteReader) ListAccesses(runID string) ([]AccessRecord, error) {
	rows, err := r.Query(`
		SELECT run_id, seq, op, address, tag, set_index, block_offset, hit,
			value, way, evicted, evicted_tag, evicted_dirty,
			write_policy, miss_policy
		FROM access
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AccessRecord
	for rows.Next() {
		var (
			a         AccessRecord
			seq, addr int64
			value     int
		)

		err := rows.Scan(
			&a.RunID, &seq, &a.Op, &addr, &a.Tag, &a.SetIndex, &a.Offset,
			&a.Hit, &value, &a.Way, &a.Evicted, &a.EvictedTag,
			&a.EvictedDirty, &a.WritePolicy, &a.MissPolicy,
		)
		if err != nil {
			return nil, err
		}

		a.Seq = uint64(seq)
		a.Address = uint64(addr)
		a.Value = byte(value)
		records = append(records, a)
	}

	return records, rows.Err()
}

// ListConfigs returns the configurations of one run in order.
func (r *SQLiteReader) ListConfigs(runID string) ([]ConfigRecord, error) {
	rows, err := r.Query(`
		SELECT run_id, seq, size, block_size, associativity, policy
		FROM config
		WHERE run_id = ?
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []ConfigRecord
	for rows.Next() {
		var (
			c   ConfigRecord
			seq int64
		)

		err := rows.Scan(&c.RunID, &seq, &c.Size, &c.BlockSize, &c.Associativity, &c.Policy)
		if err != nil {
			return nil, err
		}

		c.Seq = uint64(seq)
		configs = append(configs, c)
	}

	return configs, rows.Err()
}
