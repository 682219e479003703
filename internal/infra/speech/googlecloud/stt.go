package googlecloud

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

// STTClient recognizes speech from LINEAR16 WAV audio using Google Cloud
// Speech-to-Text. Japanese is the primary language with English as an
// alternative, matching the assistant's bilingual surface.
type STTClient struct {
	client *speech.Client
}

// NewSTTClient dials the Speech-to-Text API using ambient credentials.
func NewSTTClient(ctx context.Context) (*STTClient, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &STTClient{client: client}, nil
}

// Recognize transcribes a 16 kHz mono LINEAR16 WAV payload.
func (c *STTClient) Recognize(ctx context.Context, wav []byte) (string, error) {
	resp, err := c.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            16000,
			LanguageCode:               "ja-JP",
			AlternativeLanguageCodes:   []string{"en-US"},
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wav},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if transcript := alts[0].GetTranscript(); transcript != "" {
			parts = append(parts, transcript)
		}
	}
	return strings.Join(parts, " "), nil
}

// Close releases the underlying gRPC connection.
func (c *STTClient) Close() error {
	return c.client.Close()
}
