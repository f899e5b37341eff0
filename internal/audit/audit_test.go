package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestAppendCreatesFileAndWritesStatement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.sql")
	w := NewWriter(path)

	if err := w.Append("Alice", "Hackathon", 2, "alice@example.com", "555-0100"); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "INSERT INTO registrations(student_name, event_name, tickets, email, phone) VALUES('Alice','Hackathon',2,'alice@example.com','555-0100');\n"
	if string(data) != want {
		t.Fatalf("log content mismatch:\nwant %q\ngot  %q", want, string(data))
	}
}

func TestAppendEscapesSingleQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.sql")
	w := NewWriter(path)

	if err := w.Append("O'Brien", "It's a Quiz", 1, "", ""); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "'O''Brien'") {
		t.Fatalf("student name not escaped: %s", line)
	}
	if !strings.Contains(line, "'It''s a Quiz'") {
		t.Fatalf("event name not escaped: %s", line)
	}
}

func TestAppendAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.sql")
	w := NewWriter(path)

	for i := 0; i < 5; i++ {
		if err := w.Append(fmt.Sprintf("Student %d", i), "E", 1, "", ""); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
}

func TestAppendFailsOnUnwritablePath(t *testing.T) {
	// A directory can never be opened for appending.
	w := NewWriter(t.TempDir())
	if err := w.Append("Alice", "E", 1, "", ""); err == nil {
		t.Fatal("expected append to a directory to fail")
	}
}

func TestConcurrentAppendsProduceCompleteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.sql")
	w := NewWriter(path)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			if err := w.Append(fmt.Sprintf("Student %d", i), "E", 1, "", ""); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("expected %d lines, got %d", n, len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "INSERT INTO registrations(") || !strings.HasSuffix(line, ");") {
			t.Fatalf("interleaved or truncated line: %q", line)
		}
	}
}
