package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/handler/dto"
)

// streamEvent is one frame of the run stream
type streamEvent struct {
	name    string
	payload func(at time.Time) interface{}
}

// OrchestrationHandler serves director chat turns and their runs
type OrchestrationHandler struct {
	usecase    domain.OrchestrationUsecase
	eventDelay time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewOrchestrationHandler creates an orchestration handler; eventDelay is
// slept between two stream events
func NewOrchestrationHandler(usecase domain.OrchestrationUsecase, eventDelay time.Duration, logger *slog.Logger) *OrchestrationHandler {
	return &OrchestrationHandler{
		usecase:    usecase,
		eventDelay: eventDelay,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// Chat POST /api/v1/orchestration/conversations/:cid/threads/:tid/chat
func (h *OrchestrationHandler) Chat(ctx context.Context, c *app.RequestContext) {
	var req dto.ChatRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	turn, err := h.usecase.Chat(ctx, userID(c), c.Param("cid"), c.Param("tid"), req.ToInput())
	if err != nil {
		h.logger.Warn("chat turn failed", "conversation_id", c.Param("cid"), "thread_id", c.Param("tid"), "error", err)
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, dto.ToChatResponse(turn))
}

// GetRun GET /api/v1/orchestration/runs/:id
func (h *OrchestrationHandler) GetRun(ctx context.Context, c *app.RequestContext) {
	run, err := h.usecase.GetRun(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToAgentRunResponse(run))
}

// ListTasks GET /api/v1/orchestration/runs/:id/tasks
func (h *OrchestrationHandler) ListTasks(ctx context.Context, c *app.RequestContext) {
	tasks, err := h.usecase.ListTasks(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToTaskList(tasks))
}

// Stream GET /api/v1/orchestration/runs/:id/stream
//
// Emits a "run" start frame, one "task" frame per task and a "run" final
// frame, then closes.
func (h *OrchestrationHandler) Stream(ctx context.Context, c *app.RequestContext) {
	snapshot, err := h.usecase.OpenStream(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	// 设置状态码（必须在 SSE Writer 之前）
	c.SetStatusCode(consts.StatusOK)
	writer := sse.NewWriter(c)
	defer writer.Close()

	logger := h.logger.With("run_id", snapshot.Run.ID)

	events := make([]streamEvent, 0, len(snapshot.Tasks)+2)
	run := snapshot.Run
	events = append(events, streamEvent{"run", func(at time.Time) interface{} { return dto.NewRunEvent(run, "start", at) }})
	for _, task := range snapshot.Tasks {
		events = append(events, streamEvent{"task", func(at time.Time) interface{} { return dto.NewTaskEvent(task, at) }})
	}
	events = append(events, streamEvent{"run", func(at time.Time) interface{} { return dto.NewRunEvent(run, "final", at) }})

	for i, ev := range events {
		if i > 0 && !h.pause(ctx) {
			logger.Debug("run stream cancelled", "sent", i)
			return
		}
		if err := writeSSEJSON(writer, ev.name, ev.payload(h.now())); err != nil {
			logger.Warn("failed to write sse event", "event", ev.name, "error", err)
			return
		}
	}
	logger.Debug("run stream finished", "events", len(events))
}

func (h *OrchestrationHandler) pause(ctx context.Context) bool {
	if h.eventDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(h.eventDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// writeSSEJSON 使用 Hertz SSE Writer 发送 JSON 数据
// WriteEvent 自动添加 "event:"/"data:" 前缀and空行，并 Flush
func writeSSEJSON(writer *sse.Writer, event string, data interface{}) error {
	jsonData, err := sonic.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	return writer.WriteEvent("", event, jsonData)
}
