package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/analytics"
)

func TestAssistantReplyIncludesUsageContext(t *testing.T) {
	usage := newTestUsageService(newMemStore(), Options{})
	record(t, usage, "alice", "2024-03-01", 60, "HVAC")

	llm := &fakeLLM{reply: "Raise the thermostat."}
	svc := NewAssistantService(usage, llm, 0, zap.NewNop())
	svc.now = fixedClock

	reply, err := svc.Reply(context.Background(), "alice", "  how can I save?  ")
	require.NoError(t, err)
	assert.Equal(t, "Raise the thermostat.", reply)

	require.Len(t, llm.messages, 2)
	assert.Contains(t, llm.messages[0].Content, "2024-03: 60.00 kWh over 1 entries")
	assert.Contains(t, llm.messages[0].Content, analytics.TipHVAC)
	assert.Equal(t, "how can I save?", llm.messages[1].Content)
}

func TestAssistantReplyErrors(t *testing.T) {
	usage := newTestUsageService(newMemStore(), Options{})

	svc := NewAssistantService(usage, &fakeLLM{}, 0, zap.NewNop())
	_, err := svc.Reply(context.Background(), "alice", "   ")
	assert.True(t, errors.Is(err, analytics.ErrInvalidInput))

	svc = NewAssistantService(usage, &fakeLLM{err: errors.New("timeout")}, 0, zap.NewNop())
	_, err = svc.Reply(context.Background(), "alice", "hello")
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}
