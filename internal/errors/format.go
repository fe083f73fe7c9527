package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorWhite = "\033[37m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

// color wraps text in ANSI color codes if colors are enabled.
func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string   { return color(colorRed, text) }
func cyan(text string) string  { return color(colorCyan, text) }
func white(text string) string { return color(colorWhite, text) }
func gray(text string) string  { return color(colorGray, text) }
func bold(text string) string  { return color(colorBold, text) }

// Format returns the error formatted for terminal display:
//
//	deeplink DL202 [config] Configuration parse error
//	  --> deeplink.toml:3:10
//	        2 | [[accounts]]
//	   >    3 | family = "friendica"
//	          |          ^ unknown platform family "friendica"
//	  hint: Check the file for syntax errors.
//
// With a column the cause is printed under the caret; otherwise it gets its
// own "caused by" line.
func (e *LinkError) Format() string {
	var b strings.Builder
	b.WriteString("\n")
	e.writeHeader(&b)
	causeShown := e.writeSource(&b)

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	if e.Wrapped != nil && !causeShown {
		fmt.Fprintf(&b, "  %s %s\n", gray("caused by:"), e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n", cyan("hint:"), e.Suggestion)
	}
	if e.Example != "" {
		fmt.Fprintf(&b, "  %s\n", cyan("for example:"))
		for _, line := range strings.Split(e.Example, "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (e *LinkError) writeHeader(b *strings.Builder) {
	if e.Code == "" {
		fmt.Fprintf(b, "%s %s\n", red(bold("deeplink error:")), white(e.Message))
		return
	}
	fmt.Fprintf(b, "%s %s %s %s\n",
		red(bold("deeplink")), white(bold(e.Code)), gray("["+string(e.Category)+"]"), white(e.Message))
}

// writeSource renders the location and its surrounding lines. It reports
// whether the cause was attached to the caret.
func (e *LinkError) writeSource(b *strings.Builder) bool {
	if e.Location == nil {
		return false
	}
	fmt.Fprintf(b, "  %s %s\n", gray("-->"), cyan(e.Location.String()))

	causeShown := false
	first := e.Location.Line - len(e.Context)/2
	for i, text := range e.Context {
		n := first + i
		marker := " "
		if n == e.Location.Line {
			marker = red(">")
		}
		fmt.Fprintf(b, "   %s %4d %s %s\n", marker, n, gray("|"), text)

		if n != e.Location.Line || e.Location.Column <= 0 {
			continue
		}
		caret := strings.Repeat(" ", e.Location.Column-1) + red("^")
		if e.Wrapped != nil {
			caret += " " + e.Wrapped.Error()
			causeShown = true
		}
		fmt.Fprintf(b, "          %s %s\n", gray("|"), caret)
	}
	return causeShown
}

// FormatCompact returns a compact single-line error format.
func (e *LinkError) FormatCompact() string {
	var b strings.Builder

	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}

	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	return b.String()
}

// FormatJSON returns the error as a JSON object.
func (e *LinkError) FormatJSON() string {
	type location struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column,omitempty"`
	}
	out := struct {
		Code       string    `json:"code,omitempty"`
		Category   Category  `json:"category"`
		Message    string    `json:"message"`
		Detail     string    `json:"detail,omitempty"`
		Cause      string    `json:"cause,omitempty"`
		Location   *location `json:"location,omitempty"`
		Suggestion string    `json:"suggestion,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	if e.Location != nil {
		out.Location = &location{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	data, _ := json.Marshal(out)
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var current strings.Builder

	for _, word := range words {
		if current.Len()+len(word)+1 > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// PrintError writes a formatted error to w.
func PrintError(w io.Writer, err error) {
	var le *LinkError
	if stderrors.As(err, &le) {
		fmt.Fprint(w, le.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red(bold("deeplink error:")), err.Error())
}
