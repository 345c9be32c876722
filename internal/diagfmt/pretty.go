package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"thetac/internal/diag"
	"thetac/internal/source"
)

type palette struct {
	err, warn, info, note *color.Color
	code, gutter, caret   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message> [capsule]
//
// затем строка исходника с подчёркиванием ^~~~ по Span, затем Notes.
// Порядок: как передан; сортировку делает вызывающий.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	limit := len(diags)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}
	for i := range limit {
		d := diags[i]
		writeHeader(w, p, d, fs, opts.PathMode)
		if hasLocation(d.Primary, fs) {
			writeSnippet(w, p, fs, d.Primary, opts.Context)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				loc := ""
				if hasLocation(n.Span, fs) {
					loc = location(fs, n.Span, opts.PathMode) + ": "
				}
				fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("note:"), loc, n.Msg)
			}
		}
		fmt.Fprintln(w)
	}
	if limit < len(diags) {
		fmt.Fprintf(w, "... and %d more\n", len(diags)-limit)
	}
}

func writeHeader(w io.Writer, p palette, d diag.Diagnostic, fs *source.FileSet, mode PathMode) {
	var b strings.Builder
	if hasLocation(d.Primary, fs) {
		b.WriteString(location(fs, d.Primary, mode))
		b.WriteString(": ")
	}
	b.WriteString(p.severity(d.Severity).Sprint(d.Severity.String()))
	b.WriteString(" ")
	b.WriteString(p.code.Sprint(d.Code.ID()))
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Capsule != "" {
		b.WriteString(" [")
		b.WriteString(d.Capsule)
		b.WriteString("]")
	}
	fmt.Fprintln(w, b.String())
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
}

// writeSnippet печатает строку со span'ом и context строк вокруг.
// Колонка каретки считается в ширине терминала, а не в байтах.
func writeSnippet(w io.Writer, p palette, fs *source.FileSet, sp source.Span, context int) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	first := max(1, int(start.Line)-max(context, 0))
	last := int(start.Line) + max(context, 0)
	gutterWidth := len(strconv.Itoa(last))

	for ln := first; ln <= last; ln++ {
		line := f.GetLine(uint32(ln)) //nolint:gosec // ln >= 1
		if ln > int(start.Line) && line == "" {
			break
		}
		fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprintf("%*d", gutterWidth, ln), p.gutter.Sprint("|"), line)
		if ln != int(start.Line) {
			continue
		}
		from := int(start.Col) - 1
		from = min(from, len(line))
		to := len(line)
		if end.Line == start.Line {
			to = min(int(end.Col)-1, len(line))
		}
		pad := runewidth.StringWidth(line[:from])
		width := max(1, runewidth.StringWidth(line[from:max(from, to)]))
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s %s%s\n", strings.Repeat(" ", gutterWidth), p.gutter.Sprint("|"), strings.Repeat(" ", pad), p.caret.Sprint(marker))
	}
}

// Summary: "2 errors, 1 warning"
func Summary(diags []diag.Diagnostic) string {
	var errs, warns int
	for _, d := range diags {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	parts := []string{plural(errs, "error")}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
