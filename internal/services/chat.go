package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kidonrage/ai-labs/internal/config"
	"github.com/kidonrage/ai-labs/internal/conversation"
	"github.com/kidonrage/ai-labs/internal/pricing"
	"github.com/kidonrage/ai-labs/internal/store"
)

// snapshotKey identifies the single active conversation in the store.
const snapshotKey = "active"

// ChatService owns the active conversation and keeps its exported snapshot
// persisted: every state-changed notification is written through to the
// store, so readers never observe persisted state ahead of memory.
type ChatService struct {
	conv      *conversation.Conversation
	snapshots *store.SnapshotStore
	conn      config.Connection
	logger    *logrus.Logger
}

// NewChatService builds the conversation from config and wires persistence.
func NewChatService(cfg *config.Config, snapshots *store.SnapshotStore, logger *logrus.Logger) (*ChatService, error) {
	client, err := buildClient(cfg.Connection, logger)
	if err != nil {
		return nil, err
	}

	conv := conversation.New(
		conversation.Config{
			Endpoint:    cfg.Connection.Endpoint,
			Model:       cfg.Connection.Model,
			Temperature: cfg.Connection.Temperature,
			APIKey:      cfg.Connection.APIKey,
		},
		conversation.ContextPolicy{
			TailSize:        cfg.Context.TailSize,
			ChunkSize:       cfg.Context.ChunkSize,
			MaxSummaryChars: cfg.Context.MaxSummaryChars,
			Model:           cfg.Context.SummaryModel,
			Temperature:     cfg.Context.SummaryTemperature,
		},
		cfg.Preamble,
		client,
		logger,
	)

	s := &ChatService{
		conv:      conv,
		snapshots: snapshots,
		conn:      cfg.Connection,
		logger:    logger,
	}
	conv.OnChange(s.persist)
	return s, nil
}

// Restore loads the persisted snapshot, if any, back into the conversation.
func (s *ChatService) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	data, err := s.snapshots.Load(ctx, snapshotKey)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	s.conv.Import(data)
	s.logger.Info("Restored conversation snapshot")
	return nil
}

func (s *ChatService) persist(snapshot conversation.Snapshot) {
	if s.snapshots == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode conversation snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snapshots.Save(ctx, snapshotKey, data); err != nil {
		s.logger.WithError(err).Error("Failed to persist conversation snapshot")
	}
}

// Send performs one full turn against the configured model.
func (s *ChatService) Send(ctx context.Context, text string) (*conversation.SendResult, error) {
	requestID := uuid.New().String()
	log := s.logger.WithField("request_id", requestID)

	result, err := s.conv.Send(ctx, text)
	if err != nil {
		log.WithError(err).Warn("Send failed")
		return nil, err
	}

	fields := logrus.Fields{"model": result.Model}
	if result.Usage != nil {
		fields["total_tokens"] = result.Usage.TotalTokens
	}
	if result.Cost != nil {
		fields["cost"] = *result.Cost
	}
	log.WithFields(fields).Info("Turn completed")
	return result, nil
}

// DisplayTurn is a turn decorated with its display cost share: the input
// share for user turns, the output share for assistant turns. The stored
// per-turn cost stays the full request cost on both turns of a pair.
type DisplayTurn struct {
	conversation.Turn
	DisplayCost *float64 `json:"display_cost,omitempty"`
}

// History returns the turn list with per-turn display costs attached.
func (s *ChatService) History() []DisplayTurn {
	turns := s.conv.Turns()
	out := make([]DisplayTurn, len(turns))
	for i, turn := range turns {
		out[i] = DisplayTurn{Turn: turn}
		if !turn.HasUsage() || turn.Model == "" {
			continue
		}
		inputCost, outputCost, ok := pricing.SplitCost(turn.Model, *turn.InputTokens, *turn.OutputTokens)
		if !ok {
			continue
		}
		share := inputCost
		if turn.Role == conversation.RoleAssistant {
			share = outputCost
		}
		out[i].DisplayCost = &share
	}
	return out
}

// Summaries returns the stored summaries in coverage order.
func (s *ChatService) Summaries() []conversation.Summary {
	return s.conv.Summaries()
}

// Totals returns the combined usage/cost view.
func (s *ChatService) Totals() conversation.CombinedTotals {
	return s.conv.Totals()
}

// Reset clears the conversation and its persisted snapshot content.
func (s *ChatService) Reset() {
	s.conv.Reset()
}

// Export returns the current snapshot.
func (s *ChatService) Export() conversation.Snapshot {
	return s.conv.Export()
}

// Import merges a snapshot blob into the conversation.
func (s *ChatService) Import(data []byte) {
	s.conv.Import(data)
}

// Settings is the merge-patch surface for connection config and context
// policy.
type Settings struct {
	Connection *conversation.ConfigPatch `json:"connection,omitempty"`
	Policy     *conversation.PolicyPatch `json:"policy,omitempty"`
}

// UpdateSettings applies patches and rebuilds the provider client when the
// connection changed.
func (s *ChatService) UpdateSettings(settings Settings) error {
	if settings.Connection != nil {
		s.conv.SetConfig(*settings.Connection)

		cfg := s.conv.Config()
		if settings.Connection.Endpoint != nil {
			s.conn.Endpoint = cfg.Endpoint
		}
		if settings.Connection.APIKey != nil {
			s.conn.APIKey = cfg.APIKey
		}
		client, err := buildClient(s.conn, s.logger)
		if err != nil {
			return fmt.Errorf("failed to rebuild provider client: %w", err)
		}
		s.conv.SetClient(client)
	}
	if settings.Policy != nil {
		s.conv.SetContextPolicy(*settings.Policy)
	}
	return nil
}

// CurrentSettings returns the displayable settings (credential redacted to
// its presence).
func (s *ChatService) CurrentSettings() map[string]interface{} {
	cfg := s.conv.Config()
	policy := s.conv.Policy()
	return map[string]interface{}{
		"connection": map[string]interface{}{
			"api":         s.conn.API,
			"endpoint":    cfg.Endpoint,
			"model":       cfg.Model,
			"temperature": cfg.Temperature,
			"has_api_key": cfg.APIKey != "",
		},
		"policy": policy,
	}
}
