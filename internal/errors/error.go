package errors

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryGenerate   Category = "generate"
	CategoryCompile    Category = "compile"
	CategoryConfig     Category = "config"
	CategoryDefinition Category = "definition"
	CategoryOutput     Category = "output"
	CategoryCLI        Category = "cli"
)

// Location represents a position in a source or definition file.
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

// CannonError is a structured error with an optional location, suggestions
// and a documentation link.
type CannonError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type (generate, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains surrounding lines of the file.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *CannonError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *CannonError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file position to the error and reads the lines
// around it.
func (e *CannonError) WithLocation(file string, line, column int) *CannonError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *CannonError) WithSuggestion(s string) *CannonError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *CannonError) WithExample(ex string) *CannonError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *CannonError) WithDetail(d string) *CannonError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *CannonError) WithContext(lines []string) *CannonError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *CannonError) Wrap(err error) *CannonError {
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

// New creates a CannonError from a registered error code.
func New(code string) *CannonError {
	template, ok := registry[code]
	if !ok {
		return &CannonError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &CannonError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new CannonError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *CannonError {
	return &CannonError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns the CannonError in err's chain, or wraps err in a new
// error with the given code.
func FromError(err error, code string) *CannonError {
	if err == nil {
		return nil
	}
	var ce *CannonError
	if errors.As(err, &ce) {
		return ce
	}
	return New(code).Wrap(err)
}
