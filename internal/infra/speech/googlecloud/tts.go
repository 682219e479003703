package googlecloud

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// TTSClient synthesizes MP3 audio using Google Cloud Text-to-Speech with a
// configurable voice per language.
type TTSClient struct {
	client        *texttospeech.Client
	japaneseVoice string
	englishVoice  string
}

// NewTTSClient dials the Text-to-Speech API using ambient credentials.
func NewTTSClient(ctx context.Context, japaneseVoice, englishVoice string) (*TTSClient, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create texttospeech client: %w", err)
	}
	if japaneseVoice == "" {
		japaneseVoice = "ja-JP-Neural2-B"
	}
	if englishVoice == "" {
		englishVoice = "en-US-Neural2-F"
	}
	return &TTSClient{client: client, japaneseVoice: japaneseVoice, englishVoice: englishVoice}, nil
}

// Synthesize renders text to MP3. Language is "ja" or "en"; the caller
// validates the value before reaching here.
func (c *TTSClient) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	voice, code := c.englishVoice, "en-US"
	if strings.EqualFold(language, "ja") {
		voice, code = c.japaneseVoice, "ja-JP"
	}

	resp, err := c.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: code,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.GetAudioContent(), nil
}

// Close releases the underlying gRPC connection.
func (c *TTSClient) Close() error {
	return c.client.Close()
}
