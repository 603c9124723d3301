package repository

import (
	"context"
	"errors"
	"time"

	"agent-hub/domain/model"
)

// ErrDuplicateTurn reports an insert that lost to another writer holding
// the same durable message id.
var ErrDuplicateTurn = errors.New("conversation turn already recorded")

// IConversationLog stores the per-turn conversation ledger shared by all
// channels.
type IConversationLog interface {
	// Create persists one turn. A turn carrying a message id already in
	// the ledger returns ErrDuplicateTurn.
	Create(ctx context.Context, turn *model.ConversationTurn) (*model.ConversationTurn, error)
	GetByID(ctx context.Context, id int64) (*model.ConversationTurn, error)
	Update(ctx context.Context, turn *model.ConversationTurn) error

	// History returns turns for a conversation in ascending creation order,
	// capped at limit when limit > 0.
	History(ctx context.Context, conversationID string, limit int) ([]model.ConversationTurn, error)

	// RecentHistory returns the newest turns in ascending order.
	RecentHistory(ctx context.Context, conversationID string, limit int) ([]model.ConversationTurn, error)

	IsMessageProcessed(ctx context.Context, messageID string) (bool, error)

	TotalMessages(ctx context.Context, storeName string) (int, error)
	TotalSpend(ctx context.Context, storeName string) (float64, error)
	ActivityByDay(ctx context.Context, storeName string, since time.Time) ([]model.ActivityPoint, error)
	ConversationSummaries(ctx context.Context, storeName string, limit int) ([]model.ConversationSummary, error)
	ChannelStats(ctx context.Context, storeName, channel string) (*model.ChannelStats, error)
}
