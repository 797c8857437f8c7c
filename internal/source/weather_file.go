package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"
)

// Header is the first line every weather file must start with.
const Header = "Time,W Spd m/s,W Dir,STD W Dir,Temp 2m,Temp 8m,Glob Rad W/m2,Rel Hum %"

// LineSource yields the data lines of a weather file, header excluded.
// Iteration stops at the first error, which is fatal to the consumer.
type LineSource interface {
	Lines() iter.Seq2[string, error]
}

// WeatherFile is a CSV file of weather station data.
type WeatherFile struct {
	path string
}

// Open checks that location exists and returns a WeatherFile for it.
// The header is only verified when lines are read.
func Open(location string) (*WeatherFile, error) {
	if _, err := os.Stat(location); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Resource: "weather file", ID: location}
		}
		return nil, fmt.Errorf("failed to stat weather file: %w", err)
	}
	return &WeatherFile{path: location}, nil
}

// Path returns the location the file was opened with.
func (f *WeatherFile) Path() string {
	return f.path
}

// Lines yields every line after the header. The sequence may be ranged over
// more than once; each pass reopens the file.
func (f *WeatherFile) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		file, err := os.Open(f.path)
		if err != nil {
			yield("", fmt.Errorf("failed to open weather file: %w", err))
			return
		}
		defer file.Close()

		reader := bufio.NewReader(file)
		header, err := readLine(reader)
		if err != nil && !errors.Is(err, io.EOF) {
			yield("", fmt.Errorf("error reading weather file: %w", err))
			return
		}
		if errors.Is(err, io.EOF) && header == "" {
			yield("", &FormatError{Path: f.path, Message: "no header found"})
			return
		}
		if header != Header {
			yield("", &FormatError{Path: f.path, Message: "invalid header"})
			return
		}

		for err == nil {
			var line string
			line, err = readLine(reader)
			if errors.Is(err, io.EOF) && line == "" {
				return
			}
			if err != nil && !errors.Is(err, io.EOF) {
				yield("", fmt.Errorf("error reading weather file: %w", err))
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// readLine returns the next line without its line ending. Lines of any
// length are returned whole. The last line may lack a newline, in which case
// it is returned together with io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Unwrap lets errors.Is(err, fs.ErrNotExist) match.
func (e *NotFoundError) Unwrap() error {
	return fs.ErrNotExist
}

func (e *NotFoundError) IsTransient() bool {
	return false
}

// FormatError reports a weather file that is empty or has a bad header.
type FormatError struct {
	Path    string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *FormatError) IsTransient() bool {
	return false
}
