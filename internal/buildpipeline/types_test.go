package buildpipeline

import "testing"

func TestStageAndStatus(t *testing.T) {
	if StageParse.Weight() >= StageLink.Weight() || StageLink.Weight() >= StageEmit.Weight() {
		t.Fatal("stage weights must grow along the pipeline")
	}
	if StageLink.Verb() != "linking" || Stage("other").Verb() != "working" {
		t.Fatalf("verbs: %q %q", StageLink.Verb(), Stage("other").Verb())
	}
	for s, want := range map[Status]bool{StatusQueued: false, StatusWorking: false, StatusDone: true, StatusError: true, StatusSkipped: true} {
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v", s, !want)
		}
	}

	var rec RecordingSink
	Emit(&rec, Event{File: "a.th", Stage: StageParse, Status: StatusDone})
	Emit(nil, Event{})
	if evs := rec.Events(); len(evs) != 1 || evs[0].File != "a.th" {
		t.Fatalf("events = %+v", evs)
	}
}
