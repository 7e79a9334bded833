package application

import "time"

const (
	StageTranscribe = "transcribe"
	StageComplete   = "complete"
	StageSynthesize = "synthesize"
)

const (
	OutcomeOK       = "ok"
	OutcomeNoSpeech = "no_speech"
	OutcomeError    = "error"
)

// Recorder receives turn telemetry.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	TurnFinished(outcome string)
	SessionsChanged(active int)
	SessionReset()
}

type NoopRecorder struct{}

func (n *NoopRecorder) ObserveStage(_ string, _ time.Duration) {}
func (n *NoopRecorder) TurnFinished(_ string)                   {}
func (n *NoopRecorder) SessionsChanged(_ int)                   {}
func (n *NoopRecorder) SessionReset()                           {}
