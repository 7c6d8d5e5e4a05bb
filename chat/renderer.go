// Package chat turns raw conversation messages into what the chat views display:
// prose, an optional parts table, and the table grouped by part and stock location.
package chat

import (
	"context"
	"strings"

	"partsdesk/internal"
	"partsdesk/logger"
	"partsdesk/metrics"
	"partsdesk/parser"
	"partsdesk/types"
)

// Options holds consumer-level rendering settings
type Options struct {
	NoAnswerTrigger string
	NoAnswerMessage string
}

// TraceInfo describes how the parser handled a message
type TraceInfo struct {
	Attempted bool   `json:"attempted"`
	Outcome   string `json:"outcome"`
	Locator   string `json:"locator"`
	Decoder   string `json:"decoder"`
	Shape     string `json:"shape"`
}

// RenderedMessage is a message ready for display
type RenderedMessage struct {
	ID                  string                 `json:"id,omitempty"`
	Role                string                 `json:"role"`
	Text                string                 `json:"text"`
	Table               []types.PartRecord     `json:"tableData"`
	Groups              []*PartGroup           `json:"groups,omitempty"`
	NoAnswer            bool                   `json:"noAnswer,omitempty"`
	ConversationContext map[string]interface{} `json:"conversation_context,omitempty"`
	CreatedAt           string                 `json:"createdAt,omitempty"`
	Trace               *TraceInfo             `json:"trace,omitempty"`
}

// RenderedConversation is a conversation ready for display
type RenderedConversation struct {
	ID       string            `json:"id,omitempty"`
	Title    string            `json:"title,omitempty"`
	Messages []RenderedMessage `json:"messages"`
}

// Renderer runs assistant messages through the parser. Both chat views share one Renderer.
type Renderer struct {
	parser  *parser.Parser
	opts    Options
	log     *logger.ObservabilityLogger
	metrics *metrics.Collector
}

// NewRenderer creates a renderer. Nil dependencies fall back to the default parser,
// a discarding logger and an unscraped collector.
func NewRenderer(p *parser.Parser, opts Options, log *logger.ObservabilityLogger, m *metrics.Collector) *Renderer {
	if p == nil {
		p = parser.Default()
	}
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Renderer{parser: p, opts: opts, log: log, metrics: m}
}

// RenderMessage renders one message. User messages are passed through untouched.
func (r *Renderer) RenderMessage(ctx context.Context, msg types.Message) RenderedMessage {
	out := RenderedMessage{
		ID:                  msg.ID,
		Role:                msg.Role,
		Text:                msg.Content,
		ConversationContext: msg.ConversationContext,
		CreatedAt:           msg.CreatedAt,
	}
	r.metrics.RecordMessage(msg.Role)

	if !msg.IsAssistant() {
		return out
	}

	var result parser.Result
	if msg.Table == nil {
		result = r.parser.ParseDetected(msg.Content)
	} else {
		result = r.parser.Parse(msg.Content, *msg.Table)
	}

	trace := result.Trace
	out.Trace = &TraceInfo{
		Attempted: trace.Attempted,
		Outcome:   trace.Outcome(),
		Locator:   trace.Locator.String(),
		Decoder:   trace.Decoder.String(),
		Shape:     trace.Shape.String(),
	}
	r.metrics.RecordParse(out.Trace.Outcome, out.Trace.Locator, out.Trace.Decoder, len(msg.Content))
	r.log.Extraction(internal.GetRequestID(ctx), msg.ID, trace.Fields())

	out.Text = result.Text
	if result.HasTable() {
		out.Table = result.Table
		out.Groups = GroupParts(result.Table)
		return out
	}

	if r.isNoAnswer(msg.Content) {
		out.Text = r.opts.NoAnswerMessage
		out.NoAnswer = true
		r.log.Debug(logger.ComponentRenderer, logger.CategoryTransformation, internal.GetRequestID(ctx), "Substituted no-answer reply", map[string]interface{}{
			"message_id": msg.ID,
		})
	}
	return out
}

// RenderConversation renders every message of a conversation in order
func (r *Renderer) RenderConversation(ctx context.Context, conv types.Conversation) RenderedConversation {
	out := RenderedConversation{
		ID:       conv.ID,
		Title:    conv.Title,
		Messages: make([]RenderedMessage, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		out.Messages = append(out.Messages, r.RenderMessage(ctx, msg))
	}
	return out
}

func (r *Renderer) isNoAnswer(content string) bool {
	return r.opts.NoAnswerTrigger != "" && strings.TrimSpace(content) == r.opts.NoAnswerTrigger
}
