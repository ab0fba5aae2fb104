package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey        string
	BaseURL       string
	OrderConfig   *model.OrderModelConfig
	Transcription *model.TranscriptionConfig
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// ChatModels holds the order chat model and the speech transcriber sharing one client.
type ChatModels struct {
	Order          einomodel.BaseChatModel
	OrderModelName string
	Transcriber    Transcriber
}

// NewChatModels creates the Gemini client, the order chat model and the transcriber.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.OrderConfig == nil || config.Transcription == nil {
		return nil, fmt.Errorf("chat model config is incomplete")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	gcfg := &gemini.Config{
		Client:      client,
		Model:       config.OrderConfig.Model,
		Temperature: &config.OrderConfig.Temperature,
		MaxTokens:   &config.OrderConfig.MaxTokens,
	}
	if config.OrderConfig.ThinkingBudget > 0 {
		gcfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(config.OrderConfig.ThinkingBudget),
		}
	}

	orderModel, err := gemini.NewChatModel(ctx, gcfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating order model")
		return nil, fmt.Errorf("error creating order model: %w", err)
	}

	return &ChatModels{
		Order:          orderModel,
		OrderModelName: config.OrderConfig.Model,
		Transcriber: &geminiTranscriber{
			client:   client,
			model:    config.Transcription.Model,
			language: config.Transcription.Language,
		},
	}, nil
}

type geminiTranscriber struct {
	client   *genai.Client
	model    string
	language string
}

func (t *geminiTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	instruction := fmt.Sprintf(
		"Transcribe this audio verbatim in %s. Return only the transcript, without quotes or commentary.",
		t.language,
	)
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(audio, audioMIMEType(format)),
		}, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		logx.Error().Err(err).Str("model", t.model).Msg("Error transcribing audio")
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
