package buildpipeline

import "time"

// Stage is one phase of a build as the progress view sees it.
type Stage string

const (
	StageDiscover Stage = "discover" // capsule index over the source root
	StageParse    Stage = "parse"    // lex + parse of one file
	StageLink     Stage = "link"     // building a linked capsule
	StageEmit     Stage = "emit"     // writing the artifact
)

var stageInfo = map[Stage]struct {
	weight float64
	verb   string
}{
	StageDiscover: {0.05, "discovering"},
	StageParse:    {0.3, "parsing"},
	StageLink:     {0.6, "linking"},
	StageEmit:     {0.9, "emitting"},
}

// Weight is the share of a file's work done once it reaches the stage.
func (s Stage) Weight() float64 { return stageInfo[s].weight }

// Verb is the label for a file currently in the stage.
func (s Stage) Verb() string {
	if info, ok := stageInfo[s]; ok {
		return info.verb
	}
	return "working"
}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	// StatusSkipped: стадия не выполнялась (например, emit при ошибках)
	StatusSkipped Status = "skipped"
)

// Terminal reports whether nothing more will happen to the file.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusSkipped
}

// Event reports progress for a file, or for the run as a whole when File
// is empty.
type Event struct {
	File    string
	Capsule string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}
