// Package conversation coordinates the main and quick timelines of the
// selected conversation, and injects quick-thread content into main.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/querycache"
	"github.com/chazo1994/Creatory/internal/session"
)

// InjectionSource tags context blocks that originate from the quick lane
const InjectionSource = "quick-thread"

// InjectedStatus is the status line shown after a successful injection
const InjectedStatus = "Injected into main context block."

const (
	messagesQuery = "messages"
	runsQuery     = "orchestration-runs"
)

// API is the slice of the orchestration API the coordinator needs
type API interface {
	ListMessages(ctx context.Context, conversationID, threadID string) ([]types.Message, error)
	RunChat(ctx context.Context, conversationID, threadID string, req types.ChatRequest) (*types.ChatResult, error)
	InjectContext(ctx context.Context, conversationID string, req types.InjectRequest) (*types.ContextInjection, error)
}

// SessionReader supplies the current identity and selection
type SessionReader interface {
	Snapshot() session.Snapshot
}

// RunSummary is one chat run observed through this coordinator
type RunSummary struct {
	RunID    string
	Status   string
	ThreadID string
	Kind     types.ThreadKind
	Tasks    []types.Task
	At       time.Time
}

// Coordinator owns the two message timelines of the selected conversation.
// Sends on main and quick are independent and may run concurrently.
type Coordinator struct {
	api      API
	session  SessionReader
	logger   *slog.Logger
	messages *querycache.Cache[[]types.Message]
	runs     *querycache.Cache[[]RunSummary]

	mu       sync.Mutex
	observed map[string][]RunSummary
}

// NewCoordinator creates a coordinator over api reading selection from sess
func NewCoordinator(api API, sess SessionReader, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		api:      api,
		session:  sess,
		logger:   logger.With("component", "conversation"),
		messages: querycache.New[[]types.Message](),
		runs:     querycache.New[[]RunSummary](),
		observed: make(map[string][]RunSummary),
	}
}

// MessagesKey is the cache key of one thread's timeline
func MessagesKey(conversationID, threadID string) querycache.Key {
	return querycache.NewKey(messagesQuery, conversationID, threadID)
}

// RunsKey is the cache key of a conversation's run list
func RunsKey(conversationID string) querycache.Key {
	return querycache.NewKey(runsQuery, conversationID)
}

// ThreadID returns the selected thread of kind
func (c *Coordinator) ThreadID(kind types.ThreadKind) string {
	return c.session.Snapshot().ThreadID(kind)
}

// target resolves the conversation and thread for kind, or the §7(d) guard error
func target(snap session.Snapshot, kind types.ThreadKind) (string, string, error) {
	if !snap.Authenticated() {
		return "", "", domain.NewUnauthenticatedError()
	}
	if snap.ConversationID == "" {
		return "", "", domain.NewNoSelectionError("conversation")
	}
	threadID := snap.ThreadID(kind)
	if threadID == "" {
		return "", "", domain.NewNoSelectionError(string(kind) + " thread")
	}
	return snap.ConversationID, threadID, nil
}

// Timeline returns the messages of the selected thread of kind in server
// order, fetching only when the cached timeline is missing or stale.
func (c *Coordinator) Timeline(ctx context.Context, kind types.ThreadKind) ([]types.Message, error) {
	convID, threadID, err := target(c.session.Snapshot(), kind)
	if err != nil {
		return nil, err
	}

	return c.messages.Get(ctx, MessagesKey(convID, threadID), func(ctx context.Context) ([]types.Message, error) {
		c.logger.Debug("fetching timeline", "thread_kind", kind, "thread_id", threadID)
		messages, err := c.api.ListMessages(ctx, convID, threadID)
		if err != nil {
			return nil, fmt.Errorf("list %s messages: %w", kind, err)
		}
		return messages, nil
	})
}

// TimelineState reports the cache state of the selected thread's timeline
func (c *Coordinator) TimelineState(kind types.ThreadKind) querycache.EntryState {
	snap := c.session.Snapshot()
	return c.messages.State(MessagesKey(snap.ConversationID, snap.ThreadID(kind)))
}

// CanSend reports whether a send on kind would be attempted
func (c *Coordinator) CanSend(kind types.ThreadKind, prompt string) bool {
	_, _, err := target(c.session.Snapshot(), kind)
	return err == nil && strings.TrimSpace(prompt) != ""
}

// Send submits prompt on the selected thread of kind. On success only that
// thread's timeline and the conversation's run list become stale.
func (c *Coordinator) Send(ctx context.Context, kind types.ThreadKind, prompt string) (*types.ChatResult, error) {
	prompt = strings.TrimSpace(prompt)
	convID, threadID, err := target(c.session.Snapshot(), kind)
	if err != nil {
		return nil, err
	}
	if prompt == "" {
		return nil, domain.NewInvalidInputError("prompt is empty")
	}

	result, err := c.api.RunChat(ctx, convID, threadID, types.ChatRequest{
		Prompt:       prompt,
		MetadataJSON: map[string]any{},
	})
	if err != nil {
		return nil, err
	}

	c.messages.Invalidate(MessagesKey(convID, threadID))
	c.record(convID, RunSummary{
		RunID:    result.AgentRun.ID,
		Status:   result.AgentRun.Status,
		ThreadID: threadID,
		Kind:     kind,
		Tasks:    result.Tasks,
		At:       time.Now(),
	})
	c.runs.Invalidate(RunsKey(convID))

	c.logger.Debug("chat turn completed", "thread_kind", kind, "run_id", result.AgentRun.ID, "tasks", len(result.Tasks))
	return result, nil
}

func (c *Coordinator) record(convID string, run RunSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observed[convID] = append(c.observed[convID], run)
}

// Runs returns the chat runs observed for the selected conversation, newest last
func (c *Coordinator) Runs(ctx context.Context) ([]RunSummary, error) {
	snap := c.session.Snapshot()
	if snap.ConversationID == "" {
		return nil, domain.NewNoSelectionError("conversation")
	}
	convID := snap.ConversationID

	return c.runs.Get(ctx, RunsKey(convID), func(context.Context) ([]RunSummary, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return append([]RunSummary(nil), c.observed[convID]...), nil
	})
}

// CanInject reports whether msg is offered the inject action: it must be an
// assistant message and both threads must be selected.
func (c *Coordinator) CanInject(msg types.Message) bool {
	snap := c.session.Snapshot()
	return msg.Role == types.RoleAssistant &&
		snap.MainThreadID != "" &&
		snap.QuickThreadID != ""
}

// Inject copies msg from the quick thread into the main thread's context.
// Every call is a separate backend request; injecting the same message twice
// creates two blocks. On success the main timeline becomes stale.
func (c *Coordinator) Inject(ctx context.Context, msg types.Message) (*types.ContextInjection, error) {
	snap := c.session.Snapshot()
	if !snap.Authenticated() {
		return nil, domain.NewUnauthenticatedError()
	}
	if snap.ConversationID == "" {
		return nil, domain.NewNoSelectionError("conversation")
	}
	if !c.CanInject(msg) {
		if msg.Role != types.RoleAssistant {
			return nil, domain.NewInvalidInputError("only assistant messages can be injected")
		}
		return nil, domain.NewNoSelectionError("main and quick thread")
	}

	req := types.InjectRequest{
		FromThreadID:  snap.QuickThreadID,
		FromMessageID: msg.ID,
		ToThreadID:    snap.MainThreadID,
		ToMessageID:   nil,
		ContextBlock: types.ContextBlock{
			ReferenceID: msg.ID,
			Text:        ContentText(msg),
			Source:      InjectionSource,
		},
	}

	injection, err := c.api.InjectContext(ctx, snap.ConversationID, req)
	if err != nil {
		return nil, err
	}

	c.messages.Invalidate(MessagesKey(snap.ConversationID, snap.MainThreadID))
	c.logger.Debug("context injected", "message_id", msg.ID, "to_thread_id", snap.MainThreadID)
	return injection, nil
}

// InjectStatus is the line to display after an injection attempt
func InjectStatus(err error) string {
	if err == nil {
		return InjectedStatus
	}
	return domain.UserMessage(err)
}

// ContentText is the display text of msg: content_json.text when it is a
// string, otherwise the JSON encoding of the whole content.
func ContentText(msg types.Message) string {
	if text, ok := msg.ContentJSON["text"].(string); ok {
		return text
	}
	content := msg.ContentJSON
	if content == nil {
		content = map[string]any{}
	}
	out, err := sonic.ConfigStd.MarshalToString(content)
	if err != nil {
		return ""
	}
	return out
}

// Forget drops every cached timeline and run list, e.g. after logout
func (c *Coordinator) Forget() {
	c.messages.Reset()
	c.runs.Reset()
	c.mu.Lock()
	c.observed = make(map[string][]RunSummary)
	c.mu.Unlock()
}
