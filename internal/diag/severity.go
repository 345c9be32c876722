package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic. Only SevError blocks
// emission.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// MarshalText keeps the name in JSON and msgpack output.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText accepts any case.
func (s *Severity) UnmarshalText(b []byte) error {
	for i, name := range severityNames {
		if strings.EqualFold(string(b), name) {
			*s = Severity(i) //nolint:gosec // i < len(severityNames)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", b)
}
