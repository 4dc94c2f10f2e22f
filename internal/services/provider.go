package services

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/chronicle-engine/internal/config"
)

// OfflineNarration is what the mock provider says when nothing is scripted.
const OfflineNarration = "The narrator is offline. Configure VENICE_API_KEY to play against a real model."

// NewFromConfig builds the completion service selected by cfg.LLMProvider.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (CompletionService, error) {
	switch cfg.LLMProvider {
	case config.ProviderVenice:
		svc, err := NewVeniceService(VeniceConfig{
			APIKey:  cfg.VeniceAPIKey,
			BaseURL: cfg.VeniceBaseURL,
			Model:   cfg.ModelName,
			Timeout: cfg.LLMTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create venice provider: %w", err)
		}
		return svc, nil
	case config.ProviderMock:
		mock := NewMockCompletionService()
		mock.DefaultResponse = OfflineNarration
		return mock, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
