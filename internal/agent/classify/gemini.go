package classify

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/voicedesk/server/internal/agent/model"
	logx "github.com/voicedesk/server/pkg/logger"
)

// BackendConfig holds what is needed to reach the hosted model.
type BackendConfig struct {
	APIKey  string
	BaseURL string
	Model   model.BackendModelConfig
}

// NewGeminiChatModel builds the chat model shared by the model-backed
// classifier and extractor.
func NewGeminiChatModel(ctx context.Context, cfg BackendConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   &cfg.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating backend chat model")
		return nil, fmt.Errorf("error creating backend chat model: %w", err)
	}

	return chatModel, nil
}
