// Package assistant is the orchestrating service behind the dashboard's
// assistant endpoint: it assembles context, routes chat versus feedback,
// and records the conversation turn and profile update after replying.
package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shipsy/feedback-assistant/internal/feedback"
	"github.com/shipsy/feedback-assistant/internal/llm"
	"github.com/shipsy/feedback-assistant/internal/memory"
)

// Request types.
const (
	TypeChat     = "chat"
	TypeFeedback = "feedback"
)

// Canned chat replies, layered by how much context survived.
const (
	replyNoLLM       = "I'm here to help with your Shipsy questions and feedback. How can I assist you today?"
	replyEmptyChoice = "I understand your message. How can I help you further?"
	replyGreeting    = "Hello! I'm your Shipsy feedback assistant. I'm here to help answer questions and collect your valuable feedback to improve our platform."
	replyWithHistory = "I'm following our conversation and I'm here to help with any questions about Shipsy or to collect your feedback."
)

// Request is the inbound message from the dashboard. Validation of the
// required fields happens at the HTTP boundary, before the core.
type Request struct {
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
}

// Reply is the outbound result. The context field names are part of the
// dashboard contract.
type Reply struct {
	Response string              `json:"response"`
	Actions  []memory.ActionItem `json:"actions"`
	Context  ReplyContext        `json:"context"`
}

type ReplyContext struct {
	HasHistory       bool   `json:"hasHistory"`
	RelevantMemories int    `json:"relevantMemories"`
	UserEngagement   string `json:"userEngagement"`
}

type Service struct {
	manager   *memory.Manager
	processor *feedback.Processor
	chat      *llm.Client
}

func NewService(manager *memory.Manager, processor *feedback.Processor, chat *llm.Client) *Service {
	return &Service{
		manager:   manager,
		processor: processor,
		chat:      chat,
	}
}

// HandleMessage serves one request end to end. The reply is always
// well-formed; memory writes after the response is chosen are best-effort.
func (s *Service) HandleMessage(ctx context.Context, req Request) Reply {
	assembled := s.manager.AssembleContext(ctx, req.UserID, req.SessionID, req.Message)

	var response string
	actions := []memory.ActionItem{}

	if req.Type == TypeFeedback {
		result := s.processor.Process(ctx, req.Message, req.UserID, req.SessionID)
		response = result.Response
		actions = result.Actions
	} else {
		response = s.chatResponse(ctx, req.Message, assembled)
	}

	if err := s.manager.StoreConversationTurn(ctx, req.SessionID, req.Message, response); err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("Failed to store conversation turn")
	}

	if err := s.manager.UpdateProfile(ctx, req.UserID, map[string]string{
		memory.FieldLastMessage:      req.Message,
		memory.FieldLastResponse:     response,
		memory.FieldInteractionCount: strconv.Itoa(assembled.UserProfile.InteractionCount() + 1),
		memory.FieldLastActive:       time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Warn().Err(err).Str("user_id", req.UserID).Msg("Failed to update user profile")
	}

	return Reply{
		Response: response,
		Actions:  actions,
		Context: ReplyContext{
			HasHistory:       len(assembled.RecentHistory) > 0,
			RelevantMemories: len(assembled.RelevantMemories),
			UserEngagement:   assembled.UserProfile.EngagementLevel(),
		},
	}
}

// HealthCheck reports store health for the service health endpoint.
func (s *Service) HealthCheck(ctx context.Context) memory.HealthStatus {
	return s.manager.HealthCheck(ctx)
}

// chatResponse answers the chat path: a context-aware completion when the
// API is configured, otherwise a canned reply layered on whatever context
// survived assembly.
func (s *Service) chatResponse(ctx context.Context, message string, assembled memory.Context) string {
	if !s.chat.Configured() {
		return replyNoLLM
	}

	response, err := s.chat.Complete(ctx, buildChatPrompt(assembled), message)
	if err != nil {
		log.Warn().Err(err).Msg("Chat completion failed, using canned reply")
		return cannedReply(assembled)
	}
	if response == "" {
		return replyEmptyChoice
	}

	return response
}

func cannedReply(assembled memory.Context) string {
	if len(assembled.RelevantMemories) > 0 {
		return fmt.Sprintf(
			"I see you've provided feedback before about %s. I'm here to help with any questions or feedback you have about Shipsy.",
			assembled.RelevantMemories[0].Category,
		)
	}
	if len(assembled.RecentHistory) > 0 {
		return replyWithHistory
	}
	return replyGreeting
}

// buildChatPrompt renders the assembled context into the system prompt:
// profile summary, the last three turns, and relevant past feedback.
func buildChatPrompt(assembled memory.Context) string {
	var b strings.Builder

	b.WriteString("You are an intelligent feedback bot for Shipsy, a shipment management platform.\n\n")

	b.WriteString("User Context:\n")
	fmt.Fprintf(&b, "- Engagement Level: %s\n", assembled.UserProfile.EngagementLevel())
	fmt.Fprintf(&b, "- Previous Interactions: %d\n", assembled.UserProfile.InteractionCount())
	lastCategory := assembled.UserProfile[memory.FieldLastFeedbackCategory]
	if lastCategory == "" {
		lastCategory = "none"
	}
	fmt.Fprintf(&b, "- Last Feedback Category: %s\n", lastCategory)

	b.WriteString("\nRecent Conversation:\n")
	history := assembled.RecentHistory
	if len(history) > 3 {
		history = history[len(history)-3:]
	}
	for _, turn := range history {
		fmt.Fprintf(&b, "user: %s\n", turn.Message)
	}

	b.WriteString("\nRelevant Past Feedback:\n")
	for _, mem := range assembled.RelevantMemories {
		content := mem.Content
		if len(content) > 100 {
			content = content[:100] + "..."
		}
		fmt.Fprintf(&b, "- %s: %s\n", mem.Category, content)
	}

	fmt.Fprintf(&b, "\nCurrent Message: %s\n\n", assembled.CurrentMessage)
	b.WriteString("Provide a helpful, contextual response that acknowledges the conversation history and any relevant past feedback. Be concise but personalized.")

	return b.String()
}
