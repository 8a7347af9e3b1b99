// Package render draws dashboard state as terminal tables or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Output handles formatted output.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	bold   *color.Color
	dim    *color.Color

	bullish *color.Color
	bearish *color.Color
}

// NewOutput creates an Output writing to w. Colors are only emitted when
// colorEnabled is set and jsonMode is not.
func NewOutput(w io.Writer, jsonMode, colorEnabled bool) *Output {
	o := &Output{
		writer:       w,
		jsonMode:     jsonMode,
		colorEnabled: colorEnabled && !jsonMode,
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
		yellow:       color.New(color.FgYellow),
		cyan:         color.New(color.FgCyan),
		bold:         color.New(color.Bold),
		dim:          color.New(color.Faint),
		bullish:      color.New(color.FgGreen, color.Bold),
		bearish:      color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{o.green, o.red, o.yellow, o.cyan, o.bold, o.dim, o.bullish, o.bearish} {
		if o.colorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return o
}

// IsTerminal reports whether stdout is a character device.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// ColorEnabled reports whether ANSI styling is emitted.
func (o *Output) ColorEnabled() bool {
	return o.colorEnabled
}

// JSON outputs data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.line(o.green, format, args...)
}

// Error prints a message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.line(o.red, format, args...)
}

// Warning prints a message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.line(o.yellow, format, args...)
}

// Info prints a message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.line(o.cyan, format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.line(o.bold, format, args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.line(o.dim, format, args...)
}

func (o *Output) line(c *color.Color, format string, args ...interface{}) {
	fmt.Fprintln(o.writer, c.Sprintf(format, args...))
}

// Green returns green text.
func (o *Output) Green(text string) string { return o.green.Sprint(text) }

// Red returns red text.
func (o *Output) Red(text string) string { return o.red.Sprint(text) }

// Yellow returns yellow text.
func (o *Output) Yellow(text string) string { return o.yellow.Sprint(text) }

// BoldText returns bold text.
func (o *Output) BoldText(text string) string { return o.bold.Sprint(text) }

// DimText returns dimmed text.
func (o *Output) DimText(text string) string { return o.dim.Sprint(text) }

// ClearScreen homes the cursor and clears the terminal. No-op without color.
func (o *Output) ClearScreen() {
	if o.colorEnabled {
		fmt.Fprint(o.writer, "\033[H\033[2J")
	}
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	align   []Align
	rows    [][]string
	output  *Output
}

// Align is a column alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// NewTable creates a new table with left-aligned columns.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		align:   make([]Align, len(headers)),
		output:  output,
	}
}

// SetAlign sets the alignment of column i.
func (t *Table) SetAlign(i int, a Align) *Table {
	if i >= 0 && i < len(t.align) {
		t.align[i] = a
	}
	return t
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = VisibleWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := VisibleWidth(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	parts := make([]string, 0, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", widths[i]-VisibleWidth(cell))
		var padded string
		if t.align[i] == AlignRight {
			padded = pad + cell
		} else {
			padded = cell + pad
		}
		if isHeader {
			padded = t.output.BoldText(padded)
		}
		parts = append(parts, padded)
	}
	t.output.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
}

func (t *Table) printSeparator(widths []int) {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	t.output.Println(t.output.DimText(strings.Join(parts, "──")))
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// VisibleWidth is the rune count of s without escape sequences.
func VisibleWidth(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}
