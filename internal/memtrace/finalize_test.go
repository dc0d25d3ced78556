package memtrace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/intuitionamiga/memtrace/internal/sink"
)

func TestFinalizeWithNoCacheWritesNoHeader(t *testing.T) {
	c := New(identityTranslator)
	var buf bytes.Buffer
	c.FinalizeWith(sink.New(&buf))

	if buf.Len() != 0 {
		t.Fatalf("expected no header when no cache is built, got %q", buf.String())
	}
}

func TestFinalizeTapsDeepestLevel(t *testing.T) {
	tests := []struct {
		name     string
		build    func(c *Core) error
		wantName string
	}{
		{
			name: "L1 only",
			build: func(c *Core) error {
				return c.InitL1("64:4:64")
			},
			wantName: "L1-I, L1-D",
		},
		{
			name: "L1+L2",
			build: func(c *Core) error {
				if err := c.InitL1("64:4:64"); err != nil {
					return err
				}
				return c.InitL2("512:8:64")
			},
			wantName: "L2",
		},
		{
			name: "L1+L2+L3",
			build: func(c *Core) error {
				if err := c.InitL1("64:4:64"); err != nil {
					return err
				}
				if err := c.InitL2("512:8:64"); err != nil {
					return err
				}
				return c.InitL3("1:8:64")
			},
			wantName: "L3",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New(identityTranslator)
			if err := tc.build(c); err != nil {
				t.Fatalf("build: %v", err)
			}
			var buf bytes.Buffer
			c.FinalizeWith(sink.New(&buf))

			want := "Tracing misses at " + tc.wantName + "\n"
			if buf.String() != want {
				t.Fatalf("header = %q, want %q", buf.String(), want)
			}
		})
	}
}

func TestShutdownWritesStatsForAccessedLevelsOnly(t *testing.T) {
	c := New(identityTranslator)
	if err := c.InitL1("4:2:64"); err != nil {
		t.Fatalf("InitL1: %v", err)
	}
	var buf bytes.Buffer
	c.FinalizeWith(sink.New(&buf))
	c.Start()

	c.OnStore(0x1000, 4) // touches L1-D only, not L1-I

	c.Shutdown()

	out := buf.String()
	if !strings.Contains(out, "======== L1-D ========") {
		t.Fatalf("expected L1-D stats block in output, got:\n%s", out)
	}
	if strings.Contains(out, "======== L1-I ========") {
		t.Fatalf("L1-I saw no accesses, stats block should be suppressed, got:\n%s", out)
	}
}

func TestShutdownWithoutFinalizeDoesNotPanic(t *testing.T) {
	c := New(identityTranslator)
	c.Shutdown() // no sink ever opened, no filter installed
}

func TestMissPropagatesToSinkAsMissRecord(t *testing.T) {
	c := New(identityTranslator)
	if err := c.InitL1("1:1:64"); err != nil {
		t.Fatalf("InitL1: %v", err)
	}
	var buf bytes.Buffer
	c.FinalizeWith(sink.New(&buf))
	c.Start()

	c.OnStore(0x1000, 4)

	want := "Tracing misses at L1-I, L1-D\nS 0x1000 size 64 => 0x1000\n"
	if buf.String() != want {
		t.Fatalf("miss record = %q, want %q", buf.String(), want)
	}
}
