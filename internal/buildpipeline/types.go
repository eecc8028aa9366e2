package buildpipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageConfig locates the governing tsconfig and normalizes its options.
	StageConfig Stage = "config"
	// StageReferences builds referenced projects.
	StageReferences Stage = "references"
	// StageProgram constructs the compilation unit.
	StageProgram Stage = "program"
	// StageEmit writes the single output.
	StageEmit Stage = "emit"
	// StageDiagnose collects and filters diagnostics.
	StageDiagnose Stage = "diagnose"
	// StageResolve answers a resolution request.
	StageResolve Stage = "resolve"
)

// Stages lists the compile stages in execution order.
var Stages = []Stage{StageConfig, StageReferences, StageProgram, StageEmit, StageDiagnose}

// Status captures progress state within a stage.
type Status string

const (
	// StatusWorking indicates the stage has started.
	StatusWorking Status = "working"
	// StatusDone indicates the stage is done.
	StatusDone Status = "done"
	// StatusError indicates the stage encountered an error.
	StatusError Status = "error"
)

// Event reports progress for one file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks may be called from several
// goroutines when the pipeline serves concurrent requests.
type ProgressSink interface {
	OnEvent(Event)
}

func emitStage(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// stageTimer reports the start of a stage and, through finish, its outcome.
type stageTimer struct {
	sink  ProgressSink
	file  string
	stage Stage
	start time.Time
}

func beginStage(sink ProgressSink, file string, stage Stage) stageTimer {
	emitStage(sink, file, stage, StatusWorking, nil, 0)
	return stageTimer{sink: sink, file: file, stage: stage, start: time.Now()}
}

func (s stageTimer) finish(err error) {
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emitStage(s.sink, s.file, s.stage, status, err, time.Since(s.start))
}
