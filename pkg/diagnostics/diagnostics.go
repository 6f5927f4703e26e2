// Package diagnostics carries user-facing messages about shader sources,
// each pinned to a file and line, to whatever surface displays them.
package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Severity represents how serious a diagnostic is
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name for JSON output
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a single message about a source line
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

// Reporter receives diagnostics. Editors, the CLI and tests implement it.
type Reporter interface {
	ShowDiagnostic(file string, line int, message string, severity Severity)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(file string, line int, message string, severity Severity)

// ShowDiagnostic calls f
func (f ReporterFunc) ShowDiagnostic(file string, line int, message string, severity Severity) {
	f(file, line, message, severity)
}

// Discard drops every diagnostic
var Discard Reporter = ReporterFunc(func(string, int, string, Severity) {})

// Batch accumulates the diagnostics raised while processing one file so they
// can be handed over together once the file is done.
type Batch struct {
	file  string
	items []Diagnostic
}

// NewBatch creates a batch whose diagnostics default to file
func NewBatch(file string) *Batch {
	return &Batch{file: file}
}

// File returns the batch's default file
func (b *Batch) File() string {
	return b.file
}

// Add records a diagnostic against the batch's file
func (b *Batch) Add(line int, severity Severity, message string) {
	b.AddAt(b.file, line, severity, message)
}

// AddAt records a diagnostic against another file
func (b *Batch) AddAt(file string, line int, severity Severity, message string) {
	b.items = append(b.items, Diagnostic{File: file, Line: line, Message: message, Severity: severity})
}

// Errorf records an error
func (b *Batch) Errorf(line int, format string, args ...interface{}) {
	b.Add(line, SeverityError, fmt.Sprintf(format, args...))
}

// Warnf records a warning
func (b *Batch) Warnf(line int, format string, args ...interface{}) {
	b.Add(line, SeverityWarning, fmt.Sprintf(format, args...))
}

// Infof records an informational message
func (b *Batch) Infof(line int, format string, args ...interface{}) {
	b.Add(line, SeverityInformation, fmt.Sprintf(format, args...))
}

// Items returns the recorded diagnostics in insertion order
func (b *Batch) Items() []Diagnostic {
	return b.items
}

// Len returns the number of recorded diagnostics
func (b *Batch) Len() int {
	return len(b.items)
}

// Flush hands every recorded diagnostic to r and empties the batch
func (b *Batch) Flush(r Reporter) {
	if r == nil {
		r = Discard
	}
	for _, d := range b.items {
		r.ShowDiagnostic(d.File, d.Line, d.Message, d.Severity)
	}
	b.items = nil
}

// Collector is an in-memory Reporter
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// ShowDiagnostic records the diagnostic
func (c *Collector) ShowDiagnostic(file string, line int, message string, severity Severity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, Diagnostic{File: file, Line: line, Message: message, Severity: severity})
}

// All returns a copy of every diagnostic received so far
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// BySeverity returns the diagnostics of one severity
func (c *Collector) BySeverity(severity Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.All() {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error was received
func (c *Collector) HasErrors() bool {
	return len(c.BySeverity(SeverityError)) > 0
}

// Sorted returns the diagnostics ordered by file, then line
func (c *Collector) Sorted() []Diagnostic {
	all := c.All()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		return all[i].Line < all[j].Line
	})
	return all
}

// WriterReporter prints diagnostics as they arrive
type WriterReporter struct {
	w io.Writer
}

// NewWriterReporter creates a reporter printing to w
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

// ShowDiagnostic prints one line per diagnostic
func (r *WriterReporter) ShowDiagnostic(file string, line int, message string, severity Severity) {
	fmt.Fprintf(r.w, "%s %s:%d: %s\n", marker(severity), file, line, message)
}

func marker(s Severity) string {
	switch s {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	default:
		return "ℹ️ "
	}
}
