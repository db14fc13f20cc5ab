package errors

import (
	"fmt"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
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

func red(text string) string    { return color(colorRed, text) }
func yellow(text string) string { return color(colorYellow, text) }
func cyan(text string) string   { return color(colorCyan, text) }
func gray(text string) string   { return color(colorGray, text) }
func bold(text string) string   { return color(colorBold, text) }

// Format renders an error for terminal display.
//
//	W102: Catch-all route is not last
//	  Matching is first-match-wins over the ordered table. ...
//	  hint: move the "/*rest" route to the end of the table
//	  docs: https://wayfare.dev/docs/errors/W102
func Format(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return red("error: ") + err.Error()
	}

	var sb strings.Builder

	header := e.Message
	if e.Code != "" {
		header = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	sb.WriteString(red(bold(header)))
	sb.WriteByte('\n')

	if e.Detail != "" {
		sb.WriteString("  " + e.Detail + "\n")
	}
	if e.Wrapped != nil {
		sb.WriteString("  " + gray("caused by: "+e.Wrapped.Error()) + "\n")
	}
	if e.Suggestion != "" {
		sb.WriteString("  " + yellow("hint: ") + e.Suggestion + "\n")
	}
	if e.DocURL != "" {
		sb.WriteString("  " + cyan("docs: "+e.DocURL) + "\n")
	}

	return sb.String()
}
