package diag

import (
	"fmt"
	"strings"

	"thetac/internal/source"
)

// FormatShort renders diagnostics one per line as
// "<SEV> <ID> <path>:<line>:<col> <message>" in the order given.
// Notes follow their diagnostic with severity "note" when includeNotes is set.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeShortLine(&b, d.Severity.String(), d.Code, fs, d.Primary, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			b.WriteByte('\n')
			writeShortLine(&b, "note", d.Code, fs, n.Span, n.Msg)
		}
	}
	return b.String()
}

func writeShortLine(b *strings.Builder, sev string, code Code, fs *source.FileSet, sp source.Span, msg string) {
	loc := "<unknown>"
	if fs != nil {
		if pos := fs.Position(sp); pos.Path != "" {
			loc = fmt.Sprintf("%s:%d:%d", pos.Path, pos.Line, pos.Col)
		}
	}
	fmt.Fprintf(b, "%s %s %s %s", sev, code.ID(), loc, sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
