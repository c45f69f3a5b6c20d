package memory

import (
	"strconv"
	"time"
)

// ConversationTurn is one message/response pair in a session. Turns are
// appended, never mutated; the store keeps at most MaxTurns per session.
type ConversationTurn struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
}

// Profile is the per-user context hash. All values are stored as strings;
// typed access goes through the helper methods.
type Profile map[string]string

// Profile field names.
const (
	FieldLastMessage           = "last_message"
	FieldLastResponse          = "last_response"
	FieldInteractionCount      = "interaction_count"
	FieldLastActive            = "last_active"
	FieldLastFeedbackCategory  = "last_feedback_category"
	FieldLastFeedbackSentiment = "last_feedback_sentiment"
	FieldFeedbackCount         = "feedback_count"
	FieldEngagementLevel       = "engagement_level"
)

// InteractionCount returns the stored interaction count, 0 when absent or
// malformed.
func (p Profile) InteractionCount() int {
	n, _ := strconv.Atoi(p[FieldInteractionCount])
	return n
}

// FeedbackCount returns the stored feedback count, 0 when absent or
// malformed.
func (p Profile) FeedbackCount() int {
	n, _ := strconv.Atoi(p[FieldFeedbackCount])
	return n
}

// EngagementLevel returns the stored engagement level, "new" when the
// profile has none.
func (p Profile) EngagementLevel() string {
	if level := p[FieldEngagementLevel]; level != "" {
		return level
	}
	return "new"
}

// FeedbackRecord is a classified feedback event. Immutable once stored;
// retained seven days.
type FeedbackRecord struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	SessionID       string       `json:"session_id"`
	Content         string       `json:"content"`
	Timestamp       time.Time    `json:"timestamp"`
	Sentiment       string       `json:"sentiment"`
	Category        string       `json:"category"`
	Priority        string       `json:"priority"`
	ActionableItems []Actionable `json:"actionable_items"`
	Confidence      float64      `json:"confidence"`
}

// Actionable is a specific requested change extracted from feedback text.
type Actionable struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// ActionItem is a follow-up action planned for a feedback event. Produced
// per event and consumed immediately; never persisted.
type ActionItem struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

// RelevantMemory is a past feedback record scored against the current
// message.
type RelevantMemory struct {
	Score     float64   `json:"score"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is the assembled multi-source conversational context. Assembly
// never fails; sources that errored are present as empty values.
type Context struct {
	RecentHistory    []ConversationTurn `json:"recent_history"`
	UserProfile      Profile            `json:"user_profile"`
	RelevantMemories []RelevantMemory   `json:"relevant_memories"`
	CurrentMessage   string             `json:"current_message"`
	Timestamp        time.Time          `json:"timestamp"`
}

// HealthStatus reports the result of a store round-trip probe.
type HealthStatus struct {
	Status    string    `json:"status"` // "healthy", "unhealthy", "error"
	Store     string    `json:"store"`  // "connected", "disconnected"
	Timestamp time.Time `json:"timestamp"`
}
