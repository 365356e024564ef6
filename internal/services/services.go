package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kidonrage/ai-labs/internal/config"
	"github.com/kidonrage/ai-labs/internal/providers"
	"github.com/kidonrage/ai-labs/internal/providers/openai"
	"github.com/kidonrage/ai-labs/internal/responses"
	"github.com/kidonrage/ai-labs/internal/store"
)

// Services is the container holding all initialized services
type Services struct {
	Chat *ChatService
}

// NewServices creates and wires all services
func NewServices(cfg *config.Config, snapshots *store.SnapshotStore, logger *logrus.Logger) (*Services, error) {
	chat, err := NewChatService(cfg, snapshots, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}

	return &Services{Chat: chat}, nil
}

// buildClient selects the provider client for a connection config.
func buildClient(conn config.Connection, logger *logrus.Logger) (providers.Client, error) {
	switch conn.API {
	case "", "responses":
		return responses.NewClient(conn.Endpoint, conn.APIKey, logger), nil
	case "chat-completions":
		return openai.NewProvider(conn.APIKey, conn.Endpoint)
	default:
		return nil, fmt.Errorf("unknown connection api: %s", conn.API)
	}
}
