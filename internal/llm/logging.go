package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RequestRecord captures one LLM call for the request log.
type RequestRecord struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// RequestSink receives a record for every LLM call. The store implements
// this; tests use an in-memory sink.
type RequestSink interface {
	AppendLLMRequest(ctx context.Context, rec RequestRecord) error
}

// LoggingProvider is a decorator that records every LLM request to the
// sink and the structured log.
type LoggingProvider struct {
	inner Provider
	sink  RequestSink
	log   *zap.Logger
}

// WithLogging wraps a Provider with request logging. Both sink and log
// may be nil.
func WithLogging(p Provider, sink RequestSink, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, sink: sink, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	rec := RequestRecord{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		rec.Model = resp.Model
		rec.ResponseBody = string(resp.Content)
	}

	if err != nil {
		rec.ErrorMessage = err.Error()
	}

	l.log.Debug("llm request",
		zap.String("purpose", purpose),
		zap.String("model", rec.Model),
		zap.Int64("latency_ms", latencyMs),
		zap.Bool("success", err == nil),
	)

	// Record the event but don't fail the request if the sink fails.
	if l.sink != nil {
		if logErr := l.sink.AppendLLMRequest(ctx, rec); logErr != nil {
			l.log.Warn("failed to record LLM request", zap.Error(logErr))
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
