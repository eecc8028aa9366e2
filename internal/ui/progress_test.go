package ui

import (
	"math"
	"strings"
	"testing"

	"tsload/internal/buildpipeline"
)

func feed(m *progressModel, file string, stage buildpipeline.Stage, status buildpipeline.Status) {
	m.applyEvent(buildpipeline.Event{File: file, Stage: stage, Status: status})
}

func checkFraction(t *testing.T, m *progressModel, want float64) {
	t.Helper()
	if got := m.fraction(); math.Abs(got-want) > 1e-9 {
		t.Errorf("fraction = %v, want %v", got, want)
	}
}

func checkStatus(t *testing.T, m *progressModel, i int, want string) {
	t.Helper()
	if got := m.items[i].status; got != want {
		t.Errorf("items[%d].status = %q, want %q", i, got, want)
	}
}

func TestProgressTracksStages(t *testing.T) {
	events := make(chan buildpipeline.Event)
	model, ok := NewProgressModel("checking", []string{"/p/a.ts", "/p/b.ts"}, []string{"a.ts", "b.ts"}, events).(*progressModel)
	if !ok {
		t.Fatal("unexpected model type")
	}
	checkFraction(t, model, 0)

	feed(model, "/p/a.ts", buildpipeline.StageConfig, buildpipeline.StatusWorking)
	checkStatus(t, model, 0, "configuring")
	// a finished stage is not a finished file
	feed(model, "/p/a.ts", buildpipeline.StageConfig, buildpipeline.StatusDone)
	checkStatus(t, model, 0, "configuring")

	for _, st := range buildpipeline.Stages[1:] {
		feed(model, "/p/a.ts", st, buildpipeline.StatusWorking)
		feed(model, "/p/a.ts", st, buildpipeline.StatusDone)
	}
	checkStatus(t, model, 0, "done")
	checkFraction(t, model, 0.5)

	feed(model, "/p/b.ts", buildpipeline.StageEmit, buildpipeline.StatusError)
	checkStatus(t, model, 1, "error")
	feed(model, "/p/b.ts", buildpipeline.StageDiagnose, buildpipeline.StatusDone)
	checkStatus(t, model, 1, "error")
	checkFraction(t, model, 1)

	// unknown files are ignored
	feed(model, "/p/c.ts", buildpipeline.StageEmit, buildpipeline.StatusError)
	checkFraction(t, model, 1)
}

func TestProgressView(t *testing.T) {
	events := make(chan buildpipeline.Event)
	model := NewProgressModel("checking", []string{"/p/a.ts"}, []string{"a.ts"}, events)
	view := model.View()
	for _, want := range []string{"checking", "queued", "a.ts"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	close(events)
	msg := model.(*progressModel).listenForEvent()()
	next, _ := model.Update(msg)
	if view := next.View(); !strings.Contains(view, "done: checking") {
		t.Errorf("final view missing summary:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"src/components/app.ts", 9, "src/co..."},
		{"src/components/app.ts", 3, "src"},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.value, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
	}
}
