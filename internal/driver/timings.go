package driver

import (
	"encoding/json"
	"fmt"

	"thetac/internal/diag"
	"thetac/internal/observ"
	"thetac/internal/source"
)

type timingPayload struct {
	Kind     string               `json:"kind"`
	Path     string               `json:"path,omitempty"`
	TotalMS  float64              `json:"total_ms"`
	Phases   []observ.PhaseReport `json:"phases"`
	Capsules []observ.PhaseReport `json:"capsules,omitempty"`
}

// TimingDiagnostic wraps a timing report as an info diagnostic so it can
// travel with the rest of the output (the JSON format in particular).
// The report itself is carried as a JSON note.
func TimingDiagnostic(path string, report observ.Report) diag.Diagnostic {
	payload := timingPayload{
		Kind:     "pipeline",
		Path:     path,
		TotalMS:  report.TotalMS,
		Phases:   report.Phases,
		Capsules: report.Items,
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if path != "" {
		msg = fmt.Sprintf("%s, %s", msg, path)
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg)
	if data, err := json.Marshal(payload); err == nil {
		d = d.WithNote(source.Span{}, string(data))
	}
	return d
}
