// Package inference wraps the external speech-to-text and text-generation
// endpoints behind one client. Calls go through a circuit breaker so a
// misbehaving inference service fails fast instead of stalling requests.
package inference

import (
	"context"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"checklistapp/pkg/circuitbreaker"
	"checklistapp/pkg/config"
	"checklistapp/pkg/metrics"
)

const (
	defaultTranscriptionModel = "whisper-large-v3"
	defaultGenerationModel    = "meta-llama/Llama-3.1-8B-Instruct"
)

type Client struct {
	api                *openai.Client
	transcriptionModel string
	generationModel    string
	cb                 *circuitbreaker.CircuitBreaker
	logger             *zap.Logger
}

func NewClient(cfg config.InferenceConfig, logger *zap.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	transcriptionModel := cfg.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = defaultTranscriptionModel
	}
	generationModel := cfg.GenerationModel
	if generationModel == "" {
		generationModel = defaultGenerationModel
	}

	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &Client{
		api:                openai.NewClientWithConfig(apiCfg),
		transcriptionModel: transcriptionModel,
		generationModel:    generationModel,
		cb:                 circuitbreaker.NewCircuitBreaker(cbConfig),
		logger:             logger,
	}
}

// Transcribe submits the audio attachment to the speech-to-text endpoint and
// returns the transcribed text.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var text string

	err := c.cb.Execute(func() error {
		start := time.Now()
		resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
			Model:    c.transcriptionModel,
			Reader:   audio,
			FilePath: filename,
		})
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordInferenceCallLatency("/transcribe", status, time.Since(start))
		if err != nil {
			return err
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		c.logger.Error("Transcription failed",
			zap.String("model", c.transcriptionModel),
			zap.Error(err),
		)
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	c.logger.Info("Audio transcribed",
		zap.String("model", c.transcriptionModel),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

// Generate sends the prompt to the text-generation endpoint and returns the
// raw generated text. Parsing the checklist out of it is the caller's job.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var generated string

	err := c.cb.Execute(func() error {
		start := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.generationModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordInferenceCallLatency("/generate", status, time.Since(start))
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("generation response contains no choices")
		}
		generated = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		c.logger.Error("Generation failed",
			zap.String("model", c.generationModel),
			zap.Error(err),
		)
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	c.logger.Info("Checklist text generated",
		zap.String("model", c.generationModel),
		zap.Int("text_length", len(generated)),
	)
	return generated, nil
}
