package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collect(t *testing.T, src LineSource) ([]string, error) {
	t.Helper()
	var lines []string
	for line, err := range src.Lines() {
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("this-path-does-not-exist.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %T, want *NotFoundError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("NotFoundError should match fs.ErrNotExist")
	}
	if nf.IsTransient() {
		t.Error("NotFoundError should not be transient")
	}
}

func TestLines_FormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"empty file", "testdata/empty.csv", "no header found"},
		{"first line is not a header", "testdata/no-header.csv", "invalid header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Open(tt.path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			lines, err := collect(t, f)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FormatError", err)
			}
			if fe.Message != tt.message {
				t.Errorf("Message = %q, want %q", fe.Message, tt.message)
			}
			if len(lines) != 0 {
				t.Errorf("got %d lines before the error, want 0", len(lines))
			}
		})
	}
}

func TestLines_Valid(t *testing.T) {
	f, err := Open("testdata/valid.csv")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []string{
		"01/01/2019 01:00,7.48,271.8,9.58,9.63999,9.89999,,81.4",
		"01/01/2019 02:00,4.851,257,16.54,9.445,9.77,,83",
		"01/01/2019 03:00,4.541,295.2,17.48,9.722,10.02,,83.8",
	}

	for pass := 0; pass < 2; pass++ {
		got, err := collect(t, f)
		if err != nil {
			t.Fatalf("pass %d: Lines() error = %v", pass, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("pass %d: lines mismatch (-want +got):\n%s", pass, diff)
		}
	}
}

func TestLines_EarlyBreak(t *testing.T) {
	f, err := Open("testdata/valid.csv")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	n := 0
	for _, err := range f.Lines() {
		if err != nil {
			t.Fatalf("Lines() error = %v", err)
		}
		n++
		break
	}
	if n != 1 {
		t.Errorf("read %d lines, want 1", n)
	}
}

func TestLines_LineEndingsAndLength(t *testing.T) {
	long := strings.Repeat("x", 100*1024)
	content := Header + "\r\n" +
		"01/01/2019 01:00,7.48,271.8,9.58,9.63999,9.89999,,81.4\r\n" +
		long + "\n" +
		"\n" +
		"01/01/2019 02:00,4.851,257,16.54,9.445,9.77,,83"
	path := filepath.Join(t.TempDir(), "mixed.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := collect(t, f)
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	want := []string{
		"01/01/2019 01:00,7.48,271.8,9.58,9.63999,9.89999,,81.4",
		long,
		"",
		"01/01/2019 02:00,4.851,257,16.54,9.445,9.77,,83",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
