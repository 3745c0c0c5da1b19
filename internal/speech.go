package internal

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"
)

// SpeechSegment is one recognized stretch of audio; Alternatives are
// ordered best first
type SpeechSegment struct {
	Alternatives []string
}

// JoinBestAlternatives concatenates the first alternative of every segment,
// in order, separated by single spaces
func JoinBestAlternatives(segments []SpeechSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if len(seg.Alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(seg.Alternatives[0]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// syncRecognizeLimitSeconds keeps each request under the one minute limit
// of synchronous recognition
const syncRecognizeLimitSeconds = 55

// GoogleSpeech transcribes audio with the Cloud Speech-to-Text v1 API using
// a fixed LINEAR16 16 kHz configuration
type GoogleSpeech struct {
	apiKey   string
	language string
	audio    *Audio
	ui       UIManager
	opts     []option.ClientOption
}

// NewGoogleSpeech creates a recognizer for the given BCP-47 language code
func NewGoogleSpeech(apiKey, language string, audio *Audio, ui UIManager, opts ...option.ClientOption) *GoogleSpeech {
	return &GoogleSpeech{
		apiKey:   apiKey,
		language: language,
		audio:    audio,
		ui:       ui,
		opts:     opts,
	}
}

// Recognize normalizes the audio, splits it into chunks short enough for
// synchronous recognition and returns every result in chunk order
func (g *GoogleSpeech) Recognize(ctx context.Context, audioFile string) ([]SpeechSegment, error) {
	opts := g.opts
	if g.apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, opts...)
	}
	svc, err := speech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating speech client: %w", err)
	}

	audio, cleanup, err := g.audio.Workspace()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	wav, err := audio.Normalize(ctx, audioFile)
	if err != nil {
		return nil, fmt.Errorf("normalizing audio: %w", err)
	}

	chunks, err := audio.SplitByDuration(ctx, wav, syncRecognizeLimitSeconds)
	if err != nil {
		return nil, fmt.Errorf("splitting audio: %w", err)
	}

	bar := g.ui.NewProgressBar(len(chunks), "Recognizing speech")
	defer bar.Finish()

	var segments []SpeechSegment
	for i, chunk := range chunks {
		data, err := os.ReadFile(chunk)
		if err != nil {
			return nil, fmt.Errorf("reading chunk %d: %w", i+1, err)
		}

		resp, err := svc.Speech.Recognize(&speech.RecognizeRequest{
			Config: &speech.RecognitionConfig{
				Encoding:                   "LINEAR16",
				SampleRateHertz:            16000,
				LanguageCode:               g.language,
				EnableAutomaticPunctuation: true,
			},
			Audio: &speech.RecognitionAudio{
				Content: base64.StdEncoding.EncodeToString(data),
			},
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("recognizing chunk %d: %w", i+1, err)
		}

		segments = append(segments, recognizeSegments(resp)...)
		bar.Advance()
		g.ui.Verbose("Recognized chunk %d/%d\n", i+1, len(chunks))
	}

	return segments, nil
}

func recognizeSegments(resp *speech.RecognizeResponse) []SpeechSegment {
	if resp == nil {
		return nil
	}
	segments := make([]SpeechSegment, 0, len(resp.Results))
	for _, result := range resp.Results {
		seg := SpeechSegment{}
		for _, alt := range result.Alternatives {
			seg.Alternatives = append(seg.Alternatives, alt.Transcript)
		}
		segments = append(segments, seg)
	}
	return segments
}
