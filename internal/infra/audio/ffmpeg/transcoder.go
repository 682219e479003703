package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Transcoder normalizes arbitrary uploaded audio (webm, ogg, m4a, ...) into
// 16 kHz mono LINEAR16 WAV by shelling out to ffmpeg over pipes.
type Transcoder struct {
	binary string
}

// NewTranscoder builds a transcoder. An empty path falls back to looking up
// "ffmpeg" on PATH.
func NewTranscoder(binary string) *Transcoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{binary: binary}
}

// ToLinear16 converts the input audio to WAV suitable for speech recognition.
func (t *Transcoder) ToLinear16(ctx context.Context, audio []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.binary,
		"-i", "pipe:0",
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(audio)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg transcode: %w: %s", err, lastLine(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// lastLine keeps error output readable; ffmpeg logs its whole banner to
// stderr even on failure.
func lastLine(output []byte) string {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return "no output"
	}
	if idx := bytes.LastIndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return string(bytes.TrimSpace(trimmed))
}
