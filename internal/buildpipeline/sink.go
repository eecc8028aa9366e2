package buildpipeline

import (
	"time"

	"tsload/internal/observ"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// MultiSink fans events out to every non-nil sink.
type MultiSink []ProgressSink

func (m MultiSink) OnEvent(evt Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(evt)
		}
	}
}

// TimerSink records finished stages into an observ.Timer.
type TimerSink struct {
	Timer *observ.Timer
}

func (s TimerSink) OnEvent(evt Event) {
	if s.Timer == nil || evt.Status == StatusWorking {
		return
	}
	note := ""
	if evt.Status == StatusError {
		note = "failed"
	}
	s.Timer.Record(string(evt.Stage), time.Now().Add(-evt.Elapsed), evt.Elapsed, note)
}
