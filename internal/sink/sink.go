// Package sink implements the trace sink: a process-wide file (or stdout)
// that both the access pipeline and each cache level's teardown write
// formatted lines to. Writes are line-granular; a failed write is
// tolerated rather than propagated; the tracer must not crash the
// emulator because a disk filled up (spec §7).
package sink

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/intuitionamiga/memtrace/internal/cachesim"
)

const fallbackWidth = 80

// Sink is the formatted-line writer described in spec §6.
type Sink struct {
	w      io.Writer
	closer io.Closer
	width  int
}

// Open opens path as the trace sink. An empty path or "-" means standard
// output, matching the teacher's convention of treating "-" as the
// default stream (cmd/ie32to64's -o flag follows the same idiom).
func Open(path string) (*Sink, error) {
	if path == "" || path == "-" {
		return &Sink{w: os.Stdout, width: terminalWidth(os.Stdout)}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: opening %q: %w", path, err)
	}
	return &Sink{w: f, closer: f, width: terminalWidth(f)}, nil
}

// New wraps an arbitrary io.Writer as a sink, for tests and for embedding
// contexts that already own their output stream.
func New(w io.Writer) *Sink {
	return &Sink{w: w, width: fallbackWidth}
}

// terminalWidth queries the width of w when it is a TTY, the same way the
// teacher's terminal_host.go uses golang.org/x/term for raw-mode control;
// here it is used only to decide how wide the statistics block may run.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallbackWidth
	}
	if !term.IsTerminal(int(f.Fd())) {
		return fallbackWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

// Close closes the underlying file, if the sink owns one (stdout is
// never closed).
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Record writes one access or miss line. vaddr == 0 is the sentinel
// meaning "no vaddr context" (writebacks); the "=> 0x<vaddr>" suffix is
// omitted in that case.
func (s *Sink) Record(store bool, paddr uint64, size uint32, vaddr uint64) {
	op := "L"
	if store {
		op = "S"
	}
	if vaddr != 0 {
		fmt.Fprintf(s.w, "%s 0x%x size %d => 0x%x\n", op, paddr, size, vaddr)
	} else {
		fmt.Fprintf(s.w, "%s 0x%x size %d\n", op, paddr, size)
	}
}

// WriteRAMBase records the host virtual address and size of guest RAM.
// It writes a line on every call; Core.SetRAMBase limits it to the first.
func (s *Sink) WriteRAMBase(addr, size uint64) {
	fmt.Fprintf(s.w, "RAM base: 0x%x, size: 0x%x\n", addr, size)
}

// WriteHeader writes the one-line header finalize() emits naming the
// designated last-level tracing level.
func (s *Sink) WriteHeader(levelName string) {
	fmt.Fprintf(s.w, "Tracing misses at %s\n", levelName)
}

// WriteStats writes the destructor statistics block for one cache level,
// exactly as spec §6 specifies, suppressed entirely when the level saw no
// accesses.
func (s *Sink) WriteStats(name string, st cachesim.Statistics) {
	if st.Accesses() == 0 {
		return
	}

	banner := fmt.Sprintf("======== %s ========", name)
	if len(banner) > s.width && s.width > 0 {
		banner = banner[:s.width]
	}

	fmt.Fprintln(s.w, banner)
	fmt.Fprintf(s.w, "Bytes Read: %d\n", st.BytesRead)
	fmt.Fprintf(s.w, "Bytes Written: %d\n", st.BytesWritten)
	fmt.Fprintf(s.w, "Read Accesses: %d\n", st.ReadAccesses)
	fmt.Fprintf(s.w, "Write Accesses: %d\n", st.WriteAccesses)
	fmt.Fprintf(s.w, "Read Misses: %d\n", st.ReadMisses)
	fmt.Fprintf(s.w, "Write Misses: %d\n", st.WriteMisses)
	fmt.Fprintf(s.w, "Writebacks: %d\n", st.Writebacks)
	fmt.Fprintf(s.w, "Miss Rate: %.3f\n", st.MissRate())
}
