package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/research-chat/internal/agent"
	"github.com/spec-kit/research-chat/internal/auth"
	"github.com/spec-kit/research-chat/internal/config"
	"github.com/spec-kit/research-chat/internal/domain"
	"github.com/spec-kit/research-chat/internal/events"
	apperrors "github.com/spec-kit/research-chat/pkg/util"
)

const refusal = "Sorry, I am unable to assist you with this request."

type fakeInvoker struct {
	calls  []agent.InvokeInput
	chunks []string
	err    error
}

func (f *fakeInvoker) Invoke(_ context.Context, in agent.InvokeInput) (agent.Stream, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	chunks := make([][]byte, 0, len(f.chunks))
	for _, c := range f.chunks {
		chunks = append(chunks, []byte(c))
	}
	return agent.NewSliceStream(chunks...), nil
}

func newChatFixture(invoker agent.Invoker) (*ChatService, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, logger).RegisterHandlers()

	cfg := config.AgentConfig{AgentID: "agent-1", AgentAliasID: "alias-1", RefusalMessage: refusal}
	return NewChatService(invoker, cfg, dispatcher, logger), logs
}

func testSession() domain.Session {
	return domain.Session{
		Email:     "john.doe@example.com",
		Subject:   auth.Subject("john.doe@example.com"),
		SessionID: "3f1c7f0e-6a55-4a36-9d6b-8f7e9af0c2d1",
	}
}

func TestChatRelaysTurnToAgent(t *testing.T) {
	invoker := &fakeInvoker{chunks: []string{"Hello, ", "world!"}}
	svc, logs := newChatFixture(invoker)

	got, err := svc.Chat(context.Background(), ChatInput{Session: testSession(), Input: "Hi", EndSession: true})
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", got)

	require.Len(t, invoker.calls, 1)
	call := invoker.calls[0]
	require.Equal(t, "agent-1", call.AgentID)
	require.Equal(t, "alias-1", call.AliasID)
	require.Equal(t, "3f1c7f0e-6a55-4a36-9d6b-8f7e9af0c2d1", call.SessionID)
	require.Equal(t, "Hi", call.InputText)
	require.Equal(t, "memory-"+auth.Subject("john.doe@example.com"), call.MemoryID)
	require.True(t, call.EndSession)

	require.Equal(t, 1, logs.FilterMessage("ChatCompleted").Len())
	require.Zero(t, logs.FilterMessage("Guardrail intervened in response generation").Len())
}

func TestChatMemoryFollowsEmailAcrossSessions(t *testing.T) {
	invoker := &fakeInvoker{chunks: []string{"ok"}}
	svc, _ := newChatFixture(invoker)

	first := testSession()
	second := testSession()
	second.SessionID = "a2d4c0b6-1f1e-4d59-8e56-2a7f0b8c9e10"
	second.Email = "  John.Doe@Example.com "

	_, err := svc.Chat(context.Background(), ChatInput{Session: first, Input: "one"})
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), ChatInput{Session: second, Input: "two"})
	require.NoError(t, err)

	require.Len(t, invoker.calls, 2)
	require.Equal(t, invoker.calls[0].MemoryID, invoker.calls[1].MemoryID)
	require.NotEqual(t, invoker.calls[0].SessionID, invoker.calls[1].SessionID)
}

func TestChatRefusalIsLoggedAndPassedThrough(t *testing.T) {
	invoker := &fakeInvoker{chunks: []string{"Sorry, I am unable to assist ", "you with this request."}}
	svc, logs := newChatFixture(invoker)

	got, err := svc.Chat(context.Background(), ChatInput{Session: testSession(), Input: "something off-limits"})
	require.NoError(t, err)
	require.Equal(t, refusal, got)

	guardrail := logs.FilterMessage("Guardrail intervened in response generation").All()
	require.Len(t, guardrail, 1)
	require.Equal(t, zapcore.WarnLevel, guardrail[0].Level)
}

func TestChatRequiresInput(t *testing.T) {
	invoker := &fakeInvoker{chunks: []string{"unused"}}
	svc, _ := newChatFixture(invoker)

	_, err := svc.Chat(context.Background(), ChatInput{Session: testSession()})
	requireDomainError(t, err, http.StatusBadRequest, MsgMissingInput)
	require.Empty(t, invoker.calls)
}

func TestChatAgentFailuresAreInternal(t *testing.T) {
	boom := errors.New("ResourceNotFoundException: agent alias not found")
	svc, logs := newChatFixture(&fakeInvoker{err: boom})

	_, err := svc.Chat(context.Background(), ChatInput{Session: testSession(), Input: "Hi"})
	de := requireDomainError(t, err, http.StatusInternalServerError, apperrors.InternalErrorMessage)
	require.ErrorIs(t, de, boom)
	require.NotContains(t, de.Message, "ResourceNotFoundException")
	require.Zero(t, logs.FilterMessage("ChatCompleted").Len())
}

func TestChatInvalidUTF8IsInternal(t *testing.T) {
	svc, _ := newChatFixture(&fakeInvoker{chunks: []string{"ok", "\xff\xfe"}})

	_, err := svc.Chat(context.Background(), ChatInput{Session: testSession(), Input: "Hi"})
	de := requireDomainError(t, err, http.StatusInternalServerError, apperrors.InternalErrorMessage)
	require.ErrorIs(t, de, agent.ErrInvalidUTF8)
}
