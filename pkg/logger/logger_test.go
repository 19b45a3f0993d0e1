package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newBufferLogger(level Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Writer: &buf, NoColor: true}), &buf
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(WarnLevel)

	log.Info("hidden")
	log.Warn("shown")
	log.Errorf("failed %d times", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info should be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, "WARN  shown") || !strings.Contains(out, "ERROR failed 3 times") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestPrefixAndFields(t *testing.T) {
	log, buf := newBufferLogger(DebugLevel)

	log.WithPrefix("runner").WithFields(map[string]interface{}{"tick": 7, "docked": 2}).Debug("status")

	line := strings.TrimSpace(buf.String())
	if !strings.HasSuffix(line, "DEBUG [runner] docked=2 tick=7 status") {
		t.Errorf("Unexpected line: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Errorf("NoColor output contains escape codes: %q", line)
	}
}

func TestChildrenShareLevel(t *testing.T) {
	parent, buf := newBufferLogger(InfoLevel)
	child := parent.WithPrefix("child").WithField("k", "v")

	child.Debug("before")
	parent.(*logger).settings.level = DebugLevel
	child.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("Child did not follow the parent's level:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTablePrint(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("TEAM", "DEPLOYED")
	table.SetOutput(&buf)
	table.AddRow("Engineering", "3/12")
	table.AddRow("Ops", "0/4")
	table.Print()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header, separator and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[2], "Engineering  3/12") {
		t.Errorf("Unexpected row: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Ops          0/4") {
		t.Errorf("Columns not aligned: %q", lines[3])
	}
}

func TestIconHelpers(t *testing.T) {
	prevWriter, prevNoColor := output(), !colorEnabled()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetNoColor(true)
	t.Cleanup(func() {
		SetOutput(prevWriter)
		SetNoColor(prevNoColor)
	})

	Progressf("Orders so far: %d deployments", 3)
	Networkf("Live frames on %s", "ws://:8765/ws")

	out := buf.String()
	for _, want := range []string{IconRefresh + " Orders so far: 3 deployments", IconNetwork + " Live frames on ws://:8765/ws"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}
