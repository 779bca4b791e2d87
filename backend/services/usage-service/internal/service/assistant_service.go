package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/analytics"
	"energydash/backend/services/usage-service/internal/clients"
)

const assistantPersona = "You are an energy-saving assistant for a home energy dashboard. " +
	"Answer briefly and practically, using the household's figures when they help."

// maxChatMessage caps the user's question length.
const maxChatMessage = 2000

// ChatCompleter sends a conversation to a language model.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []clients.ChatMessage) (string, error)
}

// AssistantService answers questions with the user's usage as context.
type AssistantService struct {
	usage   *UsageService
	llm     ChatCompleter
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewAssistantService builds service.
func NewAssistantService(usage *UsageService, llm ChatCompleter, timeout time.Duration, logger *zap.Logger) *AssistantService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AssistantService{usage: usage, llm: llm, timeout: timeout, now: time.Now, logger: logger}
}

// Reply answers one question. Provider failures surface as ErrUpstreamUnavailable.
func (s *AssistantService) Reply(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", analytics.ErrInvalidInput)
	}
	if len(message) > maxChatMessage {
		return "", fmt.Errorf("%w: message exceeds %d characters", analytics.ErrInvalidInput, maxChatMessage)
	}

	entries, err := s.usage.Entries(ctx, userID)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	period := analytics.Period{Month: int(now.Month()), Year: now.Year()}
	month, err := analytics.Summarize(entries, &period)
	if err != nil {
		return "", err
	}
	tips, err := analytics.GenerateTips(entries)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	reply, err := s.llm.Complete(ctx, []clients.ChatMessage{
		{Role: "system", Content: assistantPersona + "\n" + usageContext(period, month, tips)},
		{Role: "user", Content: message},
	})
	if err != nil {
		s.logger.Warn("chat completion failed", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("%w: chat: %w", ErrUpstreamUnavailable, err)
	}
	return reply, nil
}

func usageContext(period analytics.Period, month analytics.Aggregate, tips []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage for %04d-%02d: %.2f kWh over %d entries (average %.2f kWh), recorded cost $%.2f.\n",
		period.Year, period.Month, month.TotalUsage, month.Count, month.AverageUsage, month.TotalCost)
	b.WriteString("Current recommendations:\n")
	for _, tip := range tips {
		b.WriteString("- ")
		b.WriteString(tip)
		b.WriteString("\n")
	}
	return b.String()
}
