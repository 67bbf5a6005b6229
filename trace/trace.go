// Package trace reads, writes and replays memory access traces.
//
// A trace is a text file with one access per line:
//
//	# comment
//	R 0x1f00
//	W 0x1f00 0x42
//	W 4096 7 WRITE_THROUGH NO_WRITE_ALLOCATE
//
// Numbers may be decimal, hex (0x), octal (0o) or binary (0b). The write
// policy and the write miss policy are optional. When they are missing the
// replay defaults apply.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/simulator"
)

// Access is one line of a trace.
type Access struct {
	Op    simulator.Op
	Addr  uint64
	Value byte

	// WritePolicy and MissPolicy are zero when the trace does not name them.
	WritePolicy simulator.WritePolicy
	MissPolicy  simulator.WriteMissPolicy
}

// Read returns a read access.
func Read(addr uint64) Access {
	return Access{Op: simulator.OpRead, Addr: addr}
}

// Write returns a write access that uses the replay defaults.
func Write(addr uint64, value byte) Access {
	return Access{Op: simulator.OpWrite, Addr: addr, Value: value}
}

func (a Access) String() string {
	if a.Op == simulator.OpRead {
		return fmt.Sprintf("R 0x%x", a.Addr)
	}

	s := fmt.Sprintf("W 0x%x 0x%02x", a.Addr, a.Value)

	switch {
	case a.MissPolicy != 0:
		wp := a.WritePolicy
		if wp == 0 {
			wp = simulator.WriteBack
		}
		s += " " + wp.String() + " " + a.MissPolicy.String()
	case a.WritePolicy != 0:
		s += " " + a.WritePolicy.String()
	}

	return s
}

// ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a whole trace. It stops at the first malformed line and
// returns a *ParseError for it.
func Parse(r io.Reader) ([]Access, error) {
	var accesses []Access

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		text := scanner.Text()

		a, ok, err := parseLine(text)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}

		if ok {
			accesses = append(accesses, a)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return accesses, nil
}

// ParseFile reads a trace file.
func ParseFile(path string) ([]Access, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Format writes accesses in the format Parse reads.
func Format(w io.Writer, accesses []Access) error {
	bw := bufio.NewWriter(w)

	for _, a := range accesses {
		if _, err := fmt.Fprintln(bw, a.String()); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// SaveFile writes accesses to a trace file.
func SaveFile(path string, accesses []Access) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	if err := Format(f, accesses); err != nil {
		f.Close()
		return fmt.Errorf("failed to write trace file: %w", err)
	}

	return f.Close()
}

func parseLine(text string) (Access, bool, error) {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Access{}, false, nil
	}

	switch strings.ToUpper(fields[0]) {
	case "R", "READ":
		if len(fields) != 2 {
			return Access{}, false, fmt.Errorf("read takes 1 operand, got %d", len(fields)-1)
		}

		addr, err := strconv.ParseUint(fields[1], 0, 64)
		if err != nil {
			return Access{}, false, fmt.Errorf("bad address: %w", err)
		}

		return Read(addr), true, nil
	case "W", "WRITE":
		return parseWrite(fields[1:])
	default:
		return Access{}, false, fmt.Errorf("unknown operation %q", fields[0])
	}
}

func parseWrite(operands []string) (Access, bool, error) {
	if len(operands) < 2 || len(operands) > 4 {
		return Access{}, false, fmt.Errorf("write takes 2 to 4 operands, got %d", len(operands))
	}

	addr, err := strconv.ParseUint(operands[0], 0, 64)
	if err != nil {
		return Access{}, false, fmt.Errorf("bad address: %w", err)
	}

	value, err := strconv.ParseUint(operands[1], 0, 8)
	if err != nil {
		return Access{}, false, fmt.Errorf("bad value: %w", err)
	}

	a := Write(addr, byte(value))

	if len(operands) > 2 {
		a.WritePolicy, err = simulator.ParseWritePolicy(operands[2])
		if err != nil {
			return Access{}, false, err
		}
	}

	if len(operands) > 3 {
		a.MissPolicy, err = simulator.ParseWriteMissPolicy(operands[3])
		if err != nil {
			return Access{}, false, err
		}
	}

	return a, true, nil
}
