package diag

import (
	"thetac/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one compilation error (or warning). It is created at the
// point of failure and never mutated after it reaches a Bag.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Capsule  string // capsule the failing file belongs to, "" for scripts
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithCapsule(name string) Diagnostic {
	d.Capsule = name
	return d
}

func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}
