package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Icons and symbols for different log types
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconRocket  = "🚀"
	IconNetwork = "🌐"
	IconShip    = "⛵"
	IconRefresh = "🔄"
	IconDot     = "•"
)

var (
	colorSection    = color.New(color.FgCyan, color.Bold)
	colorSectionBar = color.New(color.FgCyan)
	colorKey        = color.New(color.FgCyan)
)

func output() io.Writer {
	s := defaultSettings()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer
}

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	message := fmt.Sprint(args...)
	defaultLogger.Info(IconSuccess + " " + message)
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progressf logs a formatted progress message with a refresh icon
func Progressf(format string, args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprintf(format, args...))
}

// Networkf logs a formatted network message
func Networkf(format string, args ...interface{}) {
	defaultLogger.Info(IconNetwork + " " + fmt.Sprintf(format, args...))
}

// LogSection creates a visual section separator
func LogSection(title string) {
	line := strings.Repeat("=", 50)
	w := output()

	if colorEnabled() {
		_, _ = colorSectionBar.Fprintln(w, line)
		_, _ = colorSection.Fprintln(w, title)
		_, _ = colorSectionBar.Fprintln(w, line)
	} else {
		_, _ = fmt.Fprintln(w, line)
		_, _ = fmt.Fprintln(w, title)
		_, _ = fmt.Fprintln(w, line)
	}
}

// LogKeyValue logs a key-value pair with nice formatting
func LogKeyValue(key string, value interface{}) {
	w := output()
	if colorEnabled() {
		_, _ = fmt.Fprintf(w, "%s %v\n", colorKey.Sprint(key+":"), value)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %v\n", key, value)
	}
}

// Table represents a simple table for logging
type Table struct {
	headers []string
	rows    [][]string
	out     io.Writer
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
	}
}

// SetOutput prints the table to w instead of the logger's output
func (t *Table) SetOutput(w io.Writer) {
	t.out = w
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Print prints the table
func (t *Table) Print() {
	if len(t.headers) == 0 {
		return
	}
	w := t.out
	if w == nil {
		w = output()
	}

	// Calculate column widths
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print headers
	for i, h := range t.headers {
		_, _ = fmt.Fprintf(w, "%-*s  ", widths[i], h)
	}
	_, _ = fmt.Fprintln(w)

	// Print separator
	for i := range t.headers {
		_, _ = fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	_, _ = fmt.Fprintln(w)

	// Print rows
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				_, _ = fmt.Fprintf(w, "%-*s  ", widths[i], cell)
			}
		}
		_, _ = fmt.Fprintln(w)
	}
}
