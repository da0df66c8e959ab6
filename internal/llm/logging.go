package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/quizcraft/internal/store"
)

// LoggingProvider records every call as an LLM request event and logs it.
type LoggingProvider struct {
	inner  Provider
	events store.EventRepo
	log    *slog.Logger
}

// WithLogging wraps p with event recording. A nil repo only logs.
func WithLogging(p Provider, events store.EventRepo, log *slog.Logger) Provider {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingProvider{inner: p, events: events, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	ev := store.LLMEvent{
		Timestamp:   start.UTC(),
		Provider:    l.inner.Name(),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = resp.Text
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		l.log.WarnContext(ctx, "llm request failed",
			"provider", ev.Provider, "model", ev.Model, "purpose", ev.Purpose,
			"latency_ms", ev.LatencyMs, "error", err)
	} else {
		l.log.DebugContext(ctx, "llm request",
			"provider", ev.Provider, "model", ev.Model, "purpose", ev.Purpose,
			"latency_ms", ev.LatencyMs, "input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(ctx, ev); logErr != nil {
			l.log.WarnContext(ctx, "record llm event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) Name() string    { return l.inner.Name() }
func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

// describeRequest renders a request in a readable form for later review.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
