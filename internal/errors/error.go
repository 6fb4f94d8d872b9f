package errors

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryStartup Category = "startup"
	CategoryStorage Category = "storage"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a configuration or data file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ScribeError is a structured error with file location, suggestions, and
// documentation links, used for operator-facing failures in the CLI and
// configuration layer.
type ScribeError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type (config, startup, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains surrounding file lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is a snippet showing the correct form.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ScribeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ScribeError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location to the error.
func (e *ScribeError) WithLocation(file string, line, column int) *ScribeError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithJSONOffset derives a file location from a byte offset into data, as
// reported by encoding/json decode errors.
func (e *ScribeError) WithJSONOffset(file string, data []byte, offset int64) *ScribeError {
	if offset < 0 || offset > int64(len(data)) {
		return e
	}
	line, column := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = contextFromData(data, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ScribeError) WithSuggestion(s string) *ScribeError {
	e.Suggestion = s
	return e
}

// WithExample adds an example snippet to the error.
func (e *ScribeError) WithExample(ex string) *ScribeError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ScribeError) WithDetail(d string) *ScribeError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *ScribeError) WithContext(lines []string) *ScribeError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *ScribeError) Wrap(err error) *ScribeError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// contextFromData extracts lines around targetLine from in-memory file data.
func contextFromData(data []byte, targetLine, contextSize int) []string {
	all := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	start := targetLine - contextSize/2
	end := targetLine + contextSize/2
	if start < 1 {
		start = 1
	}
	if end > len(all) {
		end = len(all)
	}
	if start > end {
		return nil
	}
	return all[start-1 : end]
}

// New creates a ScribeError from a registered error code.
func New(code string) *ScribeError {
	template, ok := registry[code]
	if !ok {
		return &ScribeError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ScribeError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new ScribeError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ScribeError {
	return &ScribeError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ScribeError.
func FromError(err error, code string) *ScribeError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ScribeError); ok {
		return se
	}
	return New(code).Wrap(err)
}
