package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/repositories"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM" // Rachel voice
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "pcm_16000" // canonical wire rate
	defaultStability    = 0.5
	defaultClarity      = 0.75
)

// ElevenLabsConfig holds configuration for the ElevenLabs synthesizer.
// Only APIKey is required; everything else has defaults.
type ElevenLabsConfig struct {
	APIKey     string
	APIBaseURL string
	VoiceID    string
	ModelID    string
	Stability  float64
	Clarity    float64
}

// ElevenLabs is the primary TTS provider. It requests raw PCM at the
// canonical 16kHz rate so no conversion is needed downstream.
type ElevenLabs struct {
	apiKey     string
	apiBaseURL string
	voiceID    string
	modelID    string
	stability  float64
	clarity    float64
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.Synthesizer = (*ElevenLabs)(nil)

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

// ValidateElevenLabsConfig checks required fields and value ranges.
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}
	if config.Stability != 0 && (config.Stability < 0 || config.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}
	if config.Clarity != 0 && (config.Clarity < 0 || config.Clarity > 1) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}
	return nil
}

// NewElevenLabs creates the synthesizer, applying defaults where the
// config leaves fields empty.
func NewElevenLabs(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabs, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}
	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
	}
	clarity := config.Clarity
	if clarity == 0 {
		clarity = defaultClarity
	}

	return &ElevenLabs{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		voiceID:    voiceID,
		modelID:    modelID,
		stability:  stability,
		clarity:    clarity,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

// Synthesize converts text to raw PCM16 mono 16kHz bytes.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	requestBody, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s&enable_logging=false",
		e.apiBaseURL, e.voiceID, defaultOutputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/pcm")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("eleven labs API returned %d: %s", resp.StatusCode, string(errorBody))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}

	e.logger.Debug("ElevenLabs synthesis complete",
		zap.Int("textLength", len(text)),
		zap.Int("audioBytes", len(pcm)))

	return pcm, nil
}
