package observ

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Phase records the duration and metadata of a compilation phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the execution time of pipeline phases and of the
// individual capsules built inside them. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	items  []Phase // per-capsule, не входят в total
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Record adds an already measured item, e.g. the build of one capsule.
// Items nest inside phases (and inside each other through links), so
// they are reported separately and never summed into the total.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, Phase{Name: name, Dur: dur, Note: note})
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	writeRows(&b, report.Phases)
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	if len(report.Items) > 0 {
		b.WriteString("capsules:\n")
		writeRows(&b, report.Items)
	}
	return b.String()
}

func writeRows(b *strings.Builder, rows []PhaseReport) {
	for _, p := range rows {
		fmt.Fprintf(b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteString("\n")
	}
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	Items   []PhaseReport `json:"capsules,omitempty"` // самые долгие первыми
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 && len(t.items) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = toReport(phase)
	}
	report.TotalMS = durationToMillis(total)

	if len(t.items) > 0 {
		items := slices.Clone(t.items)
		slices.SortStableFunc(items, func(a, b Phase) int {
			switch {
			case a.Dur > b.Dur:
				return -1
			case a.Dur < b.Dur:
				return 1
			}
			return 0
		})
		report.Items = make([]PhaseReport, len(items))
		for i, item := range items {
			report.Items[i] = toReport(item)
		}
	}
	return report
}

func toReport(p Phase) PhaseReport {
	return PhaseReport{Name: p.Name, DurationMS: durationToMillis(p.Dur), Note: p.Note}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
