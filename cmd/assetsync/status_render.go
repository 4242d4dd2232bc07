package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"assetsync/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct{ tag, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusReport prints the sections of `assetsync status`, coloring lines only
// when the output is a terminal.
type statusReport struct {
	out   io.Writer
	color bool
}

func newStatusReport(out io.Writer) *statusReport {
	return &statusReport{out: out, color: isTerminal(out)}
}

func (r *statusReport) section(title string) {
	text := "== " + title + " =="
	if r.color {
		text = statusStyles[statusInfo].color + text + ansiReset
	}
	fmt.Fprintln(r.out, text)
}

func (r *statusReport) line(label string, kind statusKind, detail string) {
	style := statusStyles[kind]
	text := fmt.Sprintf("  %-20s [%s]", label+":", style.tag)
	if detail != "" {
		text += " " + detail
	}
	if r.color {
		text = style.color + text + ansiReset
	}
	fmt.Fprintln(r.out, text)
}

func (r *statusReport) check(result preflight.Result) {
	kind := statusError
	if result.Passed {
		kind = statusOK
	}
	r.line(result.Name, kind, result.Detail)
}

func (r *statusReport) gap() {
	fmt.Fprintln(r.out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
