package application

import "context"

// AudioSource yields one complete utterance at a time, encoded as WAV.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) ([]byte, error)
	Name() string
}

// AudioSink plays or stores synthesized replies.
type AudioSink interface {
	Play(ctx context.Context, wav []byte) error
	Close() error
}
