package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ansiGreen  = "\033[92m"
	ansiRed    = "\033[91m"
	ansiYellow = "\033[93m"
	ansiCyan   = "\033[96m"
	ansiBold   = "\033[1m"
	ansiReset  = "\033[0m"

	headerWidth = 60
)

// console reads prompts and prints colored messages and tables.
// Colors are only written when out is a terminal.
type console struct {
	scanner *bufio.Scanner
	out     io.Writer
	colored bool
	printer *message.Printer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{
		scanner: bufio.NewScanner(in),
		out:     out,
		colored: isTerminal(out),
		printer: message.NewPrinter(language.English),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *console) paint(color string, text string) string {
	if !c.colored {
		return text
	}

	return color + text + ansiReset
}

func (c *console) header(title string) {
	line := strings.Repeat("=", headerWidth)
	padding := max((headerWidth-len(title))/2, 0)
	centered := strings.Repeat(" ", padding) + title

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.paint(ansiBold+ansiCyan, line+"\n"+centered+"\n"+line))
}

func (c *console) success(format string, args ...any) {
	fmt.Fprintln(c.out, c.paint(ansiGreen, "SUCCESS: "+fmt.Sprintf(format, args...)))
}

func (c *console) failure(format string, args ...any) {
	fmt.Fprintln(c.out, c.paint(ansiRed, "ERROR: "+fmt.Sprintf(format, args...)))
}

func (c *console) warning(format string, args ...any) {
	fmt.Fprintln(c.out, c.paint(ansiYellow, "WARNING: "+fmt.Sprintf(format, args...)))
}

func (c *console) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// prompt prints label and reads one line. ok is false when the input is exhausted.
func (c *console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)

	if !c.scanner.Scan() {
		return "", false
	}

	return strings.TrimSpace(c.scanner.Text()), true
}

func (c *console) promptID(label string) (int64, bool) {
	raw, ok := c.prompt(label)
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.failure("Invalid ID format.")
		return 0, false
	}

	return id, true
}

func (c *console) confirm(label string) bool {
	answer, ok := c.prompt(label + " (y/n): ")

	return ok && strings.EqualFold(answer, "y")
}

func (c *console) table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))

	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(separators, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	_ = w.Flush()
}

// money formats an amount in dollars with thousands separators.
func (c *console) money(amount float64) string {
	return c.printer.Sprintf("$%.2f", amount)
}
