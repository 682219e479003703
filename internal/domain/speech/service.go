package speech

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/tenkiguide/backend/pkg/errors"
)

// Transcoder converts arbitrary container audio into 16kHz mono 16-bit PCM WAV.
type Transcoder interface {
	ToLinear16(ctx context.Context, audio []byte) ([]byte, error)
}

// Recognizer transcribes LINEAR16 WAV audio.
type Recognizer interface {
	Recognize(ctx context.Context, wav []byte) (string, error)
}

// Synthesizer renders text as MP3 audio in the requested language ("en"/"ja").
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Service bundles the speech helpers around the chat flow.
type Service interface {
	Transcribe(ctx context.Context, audio []byte) string
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

type service struct {
	transcoder  Transcoder
	recognizer  Recognizer
	synthesizer Synthesizer
	logger      *slog.Logger
}

// NewService wires the speech domain.
func NewService(transcoder Transcoder, recognizer Recognizer, synthesizer Synthesizer, logger *slog.Logger) Service {
	return &service{
		transcoder:  transcoder,
		recognizer:  recognizer,
		synthesizer: synthesizer,
		logger:      logger.With("component", "speech.service"),
	}
}

// Transcribe converts and recognizes uploaded audio. Any failure degrades to
// an empty transcript so a flaky microphone recording never errors the client.
func (s *service) Transcribe(ctx context.Context, audio []byte) string {
	if len(audio) == 0 {
		return ""
	}

	wav, err := s.transcoder.ToLinear16(ctx, audio)
	if err != nil {
		s.logger.Warn("audio transcode failed", "error", err)
		return ""
	}

	transcript, err := s.recognizer.Recognize(ctx, wav)
	if err != nil {
		s.logger.Warn("speech recognition failed", "error", err)
		return ""
	}
	return transcript
}

// Synthesize renders speech audio; provider failures surface to the caller.
func (s *service) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Wrap("invalid_input", "text cannot be empty", nil)
	}
	if language != "en" && language != "ja" {
		return nil, apperrors.Wrap("invalid_input", "language must be \"en\" or \"ja\"", nil)
	}

	audio, err := s.synthesizer.Synthesize(ctx, text, language)
	if err != nil {
		return nil, apperrors.Wrap("speech_error", "speech synthesis failed", err)
	}
	return audio, nil
}
