package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// checkState is the health of one status row.
type checkState int

const (
	stateInfo checkState = iota
	stateOK
	stateWarn
	stateError
)

var stateStyles = map[checkState]struct {
	tag   string
	color text.Color
}{
	stateInfo:  {"INFO", text.FgBlue},
	stateOK:    {"OK", text.FgGreen},
	stateWarn:  {"WARN", text.FgYellow},
	stateError: {"ERROR", text.FgRed},
}

func passFail(ok bool) checkState {
	if ok {
		return stateOK
	}
	return stateError
}

type statusRow struct {
	label  string
	state  checkState
	detail string
}

type statusSection struct {
	title string
	rows  []statusRow
}

// statusPrinter writes sections as aligned "label: [TAG] detail" rows.
type statusPrinter struct {
	out   io.Writer
	color bool
	width int
}

func newStatusPrinter(out io.Writer) statusPrinter {
	return statusPrinter{out: out, color: isTerminal(out), width: 20}
}

func (p statusPrinter) print(sections ...statusSection) {
	for _, s := range sections {
		heading := "== " + strings.TrimSpace(s.title) + " =="
		fmt.Fprintln(p.out, p.paint(text.FgBlue, heading))
		fmt.Fprintln(p.out, p.paint(text.FgBlue, strings.Repeat("-", len(heading))))
		for _, row := range s.rows {
			fmt.Fprintln(p.out, p.row(row))
		}
		fmt.Fprintln(p.out)
	}
}

func (p statusPrinter) row(r statusRow) string {
	style := stateStyles[r.state]
	value := "[" + style.tag + "]"
	if r.detail != "" {
		value += " " + r.detail
	}
	return p.paint(style.color, fmt.Sprintf("  %-*s %s", p.width, r.label+":", value))
}

func (p statusPrinter) paint(color text.Color, s string) string {
	if !p.color {
		return s
	}
	return color.Sprint(s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
