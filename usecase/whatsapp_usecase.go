package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

// ErrStoreNotConfigured is returned when no active channel config exists
// for the requested store.
var ErrStoreNotConfigured = errors.New("store is not configured for this channel")

const (
	historyTurns      = 5
	catalogLimit      = 20
	activityChartDays = 7
	summaryLimit      = 20
	testTimeout       = 60 * time.Second
)

// WhatsAppStats is the dashboard rollup for the WhatsApp channel.
type WhatsAppStats struct {
	TotalMessages int                         `json:"total_messages"`
	TotalSpendUSD float64                     `json:"total_spend_usd"`
	ActivityChart []model.ActivityPoint       `json:"activity_chart"`
	Conversations []model.ConversationSummary `json:"conversations"`
}

type IWhatsAppUsecase interface {
	// HandleInbound processes one Twilio webhook delivery. Errors are
	// logged, never surfaced: Twilio always gets a 200.
	HandleInbound(ctx context.Context, form *dto.TwilioInboundForm)

	// LogTurn records one AI exchange reported by the workflow engine.
	LogTurn(ctx context.Context, req *dto.AgentLogRequest) (*model.ConversationTurn, error)

	// BuildContext assembles model-ready history and a system prompt for
	// the engine before it generates a reply.
	BuildContext(ctx context.Context, req *dto.AgentContextRequest) (*dto.AgentContextResponse, error)

	Stats(ctx context.Context, storeName string) (*WhatsAppStats, error)

	// Conversation returns the full turn history for one conversation.
	Conversation(ctx context.Context, conversationID string) ([]model.ConversationTurn, error)

	// Test pushes a synthetic message through the forward path.
	Test(ctx context.Context, req *dto.AgentTestRequest) error
}

type whatsAppUsecase struct {
	configRepo repository.IWhatsAppConfig
	convRepo   repository.IConversationLog
	engine     repository.IEngine
	storeAPI   repository.IStoreAPI
	dedup      repository.IDedup
	dedupTTL   time.Duration
}

func NewWhatsAppUsecase(
	configRepo repository.IWhatsAppConfig,
	convRepo repository.IConversationLog,
	engine repository.IEngine,
	storeAPI repository.IStoreAPI,
	dedup repository.IDedup,
	dedupTTL time.Duration,
) IWhatsAppUsecase {
	return &whatsAppUsecase{
		configRepo: configRepo,
		convRepo:   convRepo,
		engine:     engine,
		storeAPI:   storeAPI,
		dedup:      dedup,
		dedupTTL:   dedupTTL,
	}
}

func (u *whatsAppUsecase) HandleInbound(ctx context.Context, form *dto.TwilioInboundForm) {
	lg := logger.GetLogger()
	from := model.NormalizePhone(form.From)
	to := model.NormalizePhone(form.To)
	if from == "" || form.Body == "" {
		lg.WithField("sid", form.MessageSid).Warn("Inbound WhatsApp message missing sender or body")
		return
	}

	// Twilio redelivers on anything but a fast 200, so the same
	// MessageSid can arrive more than once.
	if form.MessageSid != "" {
		fresh, err := u.dedup.MarkIfNew(ctx, "twilio_msg:"+form.MessageSid, u.dedupTTL)
		if err != nil {
			lg.WithField("error", err).Warn("Dedup check failed, processing anyway")
		} else if !fresh {
			lg.WithField("sid", form.MessageSid).Info("Dropping duplicate WhatsApp delivery")
			return
		}
	}

	config, err := u.configRepo.GetByTwilioNumber(ctx, to)
	if err != nil {
		lg.WithField("error", err).Error("Failed to look up WhatsApp config")
		return
	}
	if config == nil || !config.IsActive {
		lg.WithField("to", to).Warn("Inbound WhatsApp message for unmapped number")
		return
	}

	payload := &dto.WhatsAppForward{
		StoreName: config.StoreName,
		Phone:     from,
		Message:   form.Body,
	}
	if err := u.engine.ForwardWhatsApp(ctx, payload); err != nil {
		lg.WithField("error", err).WithField("store", config.StoreName).Error("Failed to forward WhatsApp message")
		return
	}
	lg.WithField("store", config.StoreName).WithField("phone", from).Info("WhatsApp message forwarded")
}

func (u *whatsAppUsecase) LogTurn(ctx context.Context, req *dto.AgentLogRequest) (*model.ConversationTurn, error) {
	storeName, customerRef := model.SplitConversationID(req.ConversationID)
	if storeName == "" {
		return nil, errors.New("conversation_id must be {store}_{customer}")
	}

	channel := req.Channel
	if channel == "" {
		channel = model.ChannelWhatsApp
	}

	turn := &model.ConversationTurn{
		StoreName:       storeName,
		Channel:         channel,
		ConversationID:  req.ConversationID,
		CustomerRef:     customerRef,
		UserMessage:     req.UserMessage,
		AiResponse:      req.AIResponse,
		TokensUsed:      req.CostTokens,
		CostEstimateUSD: model.CalculateCost(req.CostTokens),
		Status:          model.TurnStatusSuccess,
		DraftReply:      req.DraftReply,
		ReplyToEmail:    req.ReplyToEmail,
		ReplySubject:    req.ReplySubject,
	}
	if req.Action != "" {
		action := req.Action
		turn.Action = &action
		if action == model.ActionDraftGenerated {
			approval := model.ApprovalPending
			turn.ApprovalStatus = &approval
		}
	}

	created, err := u.convRepo.Create(ctx, turn)
	if err != nil {
		return nil, fmt.Errorf("failed to record conversation turn: %w", err)
	}
	return created, nil
}

func (u *whatsAppUsecase) BuildContext(ctx context.Context, req *dto.AgentContextRequest) (*dto.AgentContextResponse, error) {
	conversationID := model.WhatsAppConversationID(req.StoreName, req.Phone)

	turns, err := u.convRepo.RecentHistory(ctx, conversationID, historyTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history := formatHistory(turns)
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	systemPrompt, productsCount := u.buildSystemPrompt(ctx, req.StoreName)
	promptJSON, err := json.Marshal(systemPrompt)
	if err != nil {
		return nil, err
	}

	return &dto.AgentContextResponse{
		ConversationID:   conversationID,
		StoreName:        req.StoreName,
		Phone:            req.Phone,
		HistoryFormatted: string(historyJSON),
		SystemPrompt:     string(promptJSON),
		MessageCount:     len(turns),
		ProductsCount:    productsCount,
	}, nil
}

// formatHistory converts ledger turns into the alternating user/model
// shape the engine's Gemini call expects.
func formatHistory(turns []model.ConversationTurn) []dto.HistoryTurn {
	history := make([]dto.HistoryTurn, 0, len(turns)*2)
	for _, turn := range turns {
		if turn.UserMessage != nil && *turn.UserMessage != "" {
			history = append(history, dto.HistoryTurn{
				Role:  "user",
				Parts: []dto.HistoryPart{{Text: *turn.UserMessage}},
			})
		}
		if turn.AiResponse != nil && *turn.AiResponse != "" {
			history = append(history, dto.HistoryTurn{
				Role:  "model",
				Parts: []dto.HistoryPart{{Text: *turn.AiResponse}},
			})
		}
	}
	return history
}

// buildSystemPrompt assembles the store-aware instructions. Catalog
// lookups are best effort; a store without an API token still gets a
// generic prompt.
func (u *whatsAppUsecase) buildSystemPrompt(ctx context.Context, storeName string) (string, int) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful sales assistant for the online store %q.\n", storeName)

	productsCount := 0
	config, err := u.configRepo.GetByStoreName(ctx, storeName)
	if err != nil || config == nil {
		b.WriteString("Answer customer questions politely and concisely.")
		return b.String(), 0
	}

	if info, err := u.storeAPI.StoreInfo(ctx, config); err == nil {
		if desc, ok := info["description"].(string); ok && desc != "" {
			fmt.Fprintf(&b, "Store description: %s\n", desc)
		}
		fmt.Fprintf(&b, "Store website: %s\n", config.StoreBaseURL())
	}

	if products, err := u.storeAPI.Products(ctx, config, catalogLimit); err == nil && len(products) > 0 {
		if len(products) > catalogLimit {
			products = products[:catalogLimit]
		}
		productsCount = len(products)
		b.WriteString("\nAvailable products:\n")
		for _, p := range products {
			name, _ := p["name"].(string)
			if name == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s", name)
			if price, ok := p["price"]; ok {
				fmt.Fprintf(&b, " (price: %v)", price)
			}
			if u, ok := p["url"].(string); ok && u != "" {
				fmt.Fprintf(&b, " %s", u)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nGuidelines: answer in the customer's language, keep replies under 300 characters, ")
	b.WriteString("only recommend products listed above, and never invent prices or stock levels.")
	return b.String(), productsCount
}

func (u *whatsAppUsecase) Stats(ctx context.Context, storeName string) (*WhatsAppStats, error) {
	total, err := u.convRepo.TotalMessages(ctx, storeName)
	if err != nil {
		return nil, err
	}
	spend, err := u.convRepo.TotalSpend(ctx, storeName)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -(activityChartDays - 1)).Truncate(24 * time.Hour)
	points, err := u.convRepo.ActivityByDay(ctx, storeName, since)
	if err != nil {
		return nil, err
	}

	summaries, err := u.convRepo.ConversationSummaries(ctx, storeName, summaryLimit)
	if err != nil {
		return nil, err
	}

	return &WhatsAppStats{
		TotalMessages: total,
		TotalSpendUSD: math.Round(spend*1e5) / 1e5,
		ActivityChart: fillActivityChart(points, activityChartDays),
		Conversations: summaries,
	}, nil
}

func (u *whatsAppUsecase) Conversation(ctx context.Context, conversationID string) ([]model.ConversationTurn, error) {
	return u.convRepo.History(ctx, conversationID, 0)
}

// fillActivityChart zero-fills missing days so the dashboard always
// renders a full window.
func fillActivityChart(points []model.ActivityPoint, days int) []model.ActivityPoint {
	byDate := make(map[string]int, len(points))
	for _, p := range points {
		byDate[p.Date] = p.Count
	}
	chart := make([]model.ActivityPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		chart = append(chart, model.ActivityPoint{Date: date, Count: byDate[date]})
	}
	return chart
}

func (u *whatsAppUsecase) Test(ctx context.Context, req *dto.AgentTestRequest) error {
	config, err := u.configRepo.GetByStoreName(ctx, req.StoreName)
	if err != nil {
		return err
	}
	if config == nil || !config.IsActive {
		return ErrStoreNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()
	return u.engine.ForwardWhatsApp(ctx, &dto.WhatsAppForward{
		StoreName: config.StoreName,
		Phone:     model.NormalizePhone(req.Phone),
		Message:   req.Message,
	})
}
