package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"interview-coach/internal/domain"
)

// ErrNoSpeech is returned when the transcript of a turn is empty.
var ErrNoSpeech = errors.New("could not understand audio")

type TurnResult struct {
	SessionID  string
	Transcript string
	ReplyText  string
	ReplyAudio []byte
}

// InterviewContext is candidate material folded into a session's system turn.
type InterviewContext struct {
	ResumeText     string
	JobDescription string
}

// Coach runs one interview turn at a time: transcribe, record, complete,
// record, synthesize. Nothing is retried and earlier store writes are kept
// when a later step fails.
type Coach struct {
	stt      SpeechToText
	llm      Completer
	tts      Synthesizer
	dialogue DialogueStore
	recorder Recorder
	logger   *slog.Logger
}

func NewCoach(
	stt SpeechToText,
	llm Completer,
	tts Synthesizer,
	dialogue DialogueStore,
	recorder Recorder,
	logger *slog.Logger,
) *Coach {
	if recorder == nil {
		recorder = &NoopRecorder{}
	}
	return &Coach{
		stt:      stt,
		llm:      llm,
		tts:      tts,
		dialogue: dialogue,
		recorder: recorder,
		logger:   logger,
	}
}

func (c *Coach) Turn(ctx context.Context, sessionID string, audio []byte) (*TurnResult, error) {
	c.logger.Info("received audio", "session_id", sessionID, "bytes", len(audio))

	transcript, err := c.Transcribe(ctx, audio)
	if err != nil {
		c.recorder.TurnFinished(OutcomeError)
		return nil, err
	}
	if transcript == "" {
		c.recorder.TurnFinished(OutcomeNoSpeech)
		return nil, ErrNoSpeech
	}

	return c.Respond(ctx, sessionID, transcript)
}

// Transcribe converts one utterance to text without touching the session.
// Engine errors are returned as the adapter wrapped them.
func (c *Coach) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var transcript string
	err := c.timed(StageTranscribe, func() error {
		var err error
		transcript, err = c.stt.Transcribe(ctx, audio)
		return err
	})
	if err != nil {
		return "", err
	}

	transcript = strings.TrimSpace(transcript)
	c.logger.Info("transcribed", "text", transcript)
	return transcript, nil
}

// Respond records transcript as a user turn and produces the spoken reply.
func (c *Coach) Respond(ctx context.Context, sessionID, transcript string) (*TurnResult, error) {
	before := c.dialogue.Len()
	history := c.dialogue.Append(sessionID, domain.RoleUser, transcript)
	if after := c.dialogue.Len(); after != before {
		c.recorder.SessionsChanged(after)
	}

	var reply string
	err := c.timed(StageComplete, func() error {
		var err error
		reply, err = c.llm.Complete(ctx, history)
		return err
	})
	if err != nil {
		c.recorder.TurnFinished(OutcomeError)
		return nil, fmt.Errorf("completing: %w", err)
	}

	reply = Exclaim(reply)
	c.dialogue.Append(sessionID, domain.RoleAssistant, reply)
	c.logger.Info("reply ready", "session_id", sessionID, "text", reply, "turns", len(history)+1)

	var audio []byte
	err = c.timed(StageSynthesize, func() error {
		var err error
		audio, err = c.tts.Synthesize(ctx, reply)
		return err
	})
	if err != nil {
		c.recorder.TurnFinished(OutcomeError)
		return nil, err
	}

	c.recorder.TurnFinished(OutcomeOK)

	return &TurnResult{
		SessionID:  sessionID,
		Transcript: transcript,
		ReplyText:  reply,
		ReplyAudio: audio,
	}, nil
}

func (c *Coach) Reset(sessionID string) {
	c.dialogue.Reset(sessionID)
	c.recorder.SessionReset()
	c.recorder.SessionsChanged(c.dialogue.Len())
	c.logger.Info("session reset", "session_id", sessionID)
}

// SetContext starts the session over with the candidate material appended to
// the system instruction.
func (c *Coach) SetContext(sessionID string, ic InterviewContext) {
	var b strings.Builder
	b.WriteString(c.dialogue.SystemPrompt())
	if resume := strings.TrimSpace(ic.ResumeText); resume != "" {
		b.WriteString("\n\nCandidate resume:\n")
		b.WriteString(resume)
	}
	if job := strings.TrimSpace(ic.JobDescription); job != "" {
		b.WriteString("\n\nJob description:\n")
		b.WriteString(job)
	}

	c.dialogue.Seed(sessionID, b.String())
	c.recorder.SessionsChanged(c.dialogue.Len())
	c.logger.Info("session context updated",
		"session_id", sessionID,
		"resume_chars", len(ic.ResumeText),
		"job_chars", len(ic.JobDescription),
	)
}

func (c *Coach) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.recorder.ObserveStage(stage, time.Since(start))
	return err
}
