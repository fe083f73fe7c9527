package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryPattern Category = "pattern"
	CategoryConfig  Category = "config"
	CategorySource  Category = "source"
	CategoryInput   Category = "input"
	CategoryCLI     Category = "cli"
)

// Location points into a configuration or account file.
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

// LinkError is a coded error shown to operators of the deeplink tools.
type LinkError struct {
	// Code is a unique error identifier (e.g., "DL101").
	Code string

	// Category groups related codes.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to, if any.
	Location *Location

	// Context holds the file lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows a correct snippet.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LinkError) Unwrap() error {
	return e.Wrapped
}

// WithLocation points the error at a file position and loads the
// surrounding lines.
func (e *LinkError) WithLocation(file string, line, column int) *LinkError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LinkError) WithSuggestion(s string) *LinkError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *LinkError) WithExample(ex string) *LinkError {
	e.Example = ex
	return e
}

// WithDetail replaces the detailed explanation.
func (e *LinkError) WithDetail(d string) *LinkError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *LinkError) Wrap(err error) *LinkError {
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

// New creates a LinkError from a registered error code.
func New(code string) *LinkError {
	template, ok := registry[code]
	if !ok {
		return &LinkError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LinkError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new LinkError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LinkError {
	return &LinkError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LinkError.
func FromError(err error, code string) *LinkError {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LinkError); ok {
		return le
	}
	return New(code).Wrap(err)
}
