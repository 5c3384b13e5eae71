package cx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"os"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"github.com/go-audio/wav"
)

const (
	DefaultAudioEncoding   = "AUDIO_ENCODING_LINEAR_16"
	DefaultSampleRateHertz = 16000
)

// EncodingError reports an audio encoding name the API does not define.
type EncodingError struct {
	Name string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unknown audio encoding %q", e.Name)
}

// ParseAudioEncoding looks up an encoding by its enum name, e.g. AUDIO_ENCODING_LINEAR_16.
// An empty name selects DefaultAudioEncoding.
func ParseAudioEncoding(name string) (cxpb.AudioEncoding, error) {
	if name == "" {
		name = DefaultAudioEncoding
	}

	v, ok := cxpb.AudioEncoding_value[name]
	if !ok {
		return cxpb.AudioEncoding_AUDIO_ENCODING_UNSPECIFIED, &EncodingError{Name: name}
	}

	return cxpb.AudioEncoding(v), nil
}

// AudioInput is a single utterance of recorded audio.
type AudioInput struct {
	Content         []byte
	Encoding        cxpb.AudioEncoding
	SampleRateHertz int
}

// NewAudioInput prepares content for detection. A zero sampleRate is taken from
// the WAV header when content is a WAV file, otherwise DefaultSampleRateHertz.
// Negative rates and rates that do not fit the int32 wire field are rejected.
func NewAudioInput(content []byte, encoding string, sampleRate int) (*AudioInput, error) {
	enc, err := ParseAudioEncoding(encoding)
	if err != nil {
		return nil, err
	}

	if sampleRate < 0 || int64(sampleRate) > math.MaxInt32 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	if sampleRate == 0 {
		sampleRate = DefaultSampleRateHertz
		if rate, ok := wavSampleRate(content); ok {
			sampleRate = rate
		}
	}

	return &AudioInput{
		Content:         content,
		Encoding:        enc,
		SampleRateHertz: sampleRate,
	}, nil
}

func ReadAudioFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file. %w", err)
	}

	return content, nil
}

func DecodeAudioBase64(s string) ([]byte, error) {
	content, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 audio. %w", err)
	}

	return content, nil
}

func wavSampleRate(content []byte) (int, bool) {
	d := wav.NewDecoder(bytes.NewReader(content))
	if !d.IsValidFile() || d.SampleRate == 0 {
		return 0, false
	}

	return int(d.SampleRate), true
}

func (a *AudioInput) queryInput() *cxpb.QueryInput_Audio {
	return &cxpb.QueryInput_Audio{
		Audio: &cxpb.AudioInput{
			Config: &cxpb.InputAudioConfig{
				AudioEncoding:   a.Encoding,
				SampleRateHertz: int32(a.SampleRateHertz),
				SingleUtterance: true,
			},
			Audio: a.Content,
		},
	}
}
