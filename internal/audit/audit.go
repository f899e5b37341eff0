package audit

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Writer appends one replayable INSERT statement per committed
// registration to a side file. The file is advisory: the relational
// store stays the source of truth, so a failed append is reported to
// the caller but never undoes a commit.
//
// Appends are serialized behind an in-process mutex. That is enough for
// the single-process deployment this service targets; concurrent
// appends from multiple processes are not supported.
type Writer struct {
	mu   sync.Mutex
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Path() string {
	return w.path
}

// Append renders the committed registration as a single INSERT
// statement and appends it to the log, creating the file if absent.
func (w *Writer) Append(studentName, eventName string, tickets int, email, phone string) error {
	line := fmt.Sprintf(
		"INSERT INTO registrations(student_name, event_name, tickets, email, phone) VALUES('%s','%s',%d,'%s','%s');\n",
		escape(studentName), escape(eventName), tickets, escape(email), escape(phone),
	)

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log %s: %w", w.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to audit log %s: %w", w.path, err)
	}
	return nil
}

// escape doubles single quotes so every logged statement stays
// mechanically replayable.
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
