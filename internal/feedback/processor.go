package feedback

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shipsy/feedback-assistant/internal/memory"
	"github.com/shipsy/feedback-assistant/internal/metrics"
)

// degradedReply acknowledges feedback when the pipeline itself failed.
const degradedReply = "Thank you for your feedback. I've received your message and will make sure it's reviewed by our team."

// Result is the unified outcome of one feedback event, produced even on
// partial failure.
type Result struct {
	Record   memory.FeedbackRecord
	Actions  []memory.ActionItem
	Response string
}

// Processor sequences classify, store, plan, profile update and response
// generation. No step's failure escapes to the caller: individual store
// failures are logged and skipped, and an unexpected panic anywhere in the
// sequence collapses to a safe degraded result.
type Processor struct {
	classifier *Classifier
	planner    *Planner
	responder  *Responder
	manager    *memory.Manager
}

func NewProcessor(classifier *Classifier, manager *memory.Manager) *Processor {
	return &Processor{
		classifier: classifier,
		planner:    NewPlanner(),
		responder:  NewResponder(),
		manager:    manager,
	}
}

// Process runs the full pipeline for one piece of raw feedback.
func (p *Processor) Process(ctx context.Context, content, userID, sessionID string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("user_id", userID).Msg("Feedback pipeline failed, returning degraded result")
			metrics.FeedbackDegradedTotal.Inc()
			result = degradedResult(content, userID, sessionID)
		}
	}()

	analysis := p.classifier.Analyze(content)

	rec := memory.FeedbackRecord{
		ID:              fmt.Sprintf("fb_%d_%s", time.Now().UnixMilli(), userID),
		UserID:          userID,
		SessionID:       sessionID,
		Content:         content,
		Timestamp:       time.Now().UTC(),
		Sentiment:       analysis.Sentiment,
		Category:        analysis.Category,
		Priority:        analysis.Priority,
		ActionableItems: analysis.ActionableItems,
		Confidence:      analysis.Confidence,
	}

	if err := p.manager.StoreFeedback(ctx, rec); err != nil {
		log.Warn().Err(err).Str("feedback_id", rec.ID).Msg("Failed to store feedback, continuing")
	}

	actions := p.planner.Plan(rec)

	if err := p.updateProfile(ctx, userID, rec); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to update user profile, continuing")
	}

	metrics.RecordFeedback(rec.Category, rec.Priority)

	log.Info().
		Str("feedback_id", rec.ID).
		Str("category", rec.Category).
		Str("priority", rec.Priority).
		Str("sentiment", rec.Sentiment).
		Int("actionable_items", len(rec.ActionableItems)).
		Float64("confidence", rec.Confidence).
		Msg("Feedback processed")

	return Result{
		Record:   rec,
		Actions:  actions,
		Response: p.responder.Generate(rec),
	}
}

// updateProfile merges the feedback outcome into the user profile and
// recomputes the engagement level from the pre-increment feedback count.
func (p *Processor) updateProfile(ctx context.Context, userID string, rec memory.FeedbackRecord) error {
	profile, err := p.manager.GetProfile(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Profile read failed, treating as empty")
		profile = memory.Profile{}
	}

	count := profile.FeedbackCount()
	hasActionable := len(rec.ActionableItems) > 0

	return p.manager.UpdateProfile(ctx, userID, map[string]string{
		memory.FieldLastFeedbackCategory:  rec.Category,
		memory.FieldLastFeedbackSentiment: rec.Sentiment,
		memory.FieldFeedbackCount:         strconv.Itoa(count + 1),
		memory.FieldEngagementLevel:       engagementLevel(count, hasActionable),
	})
}

func engagementLevel(feedbackCount int, hasActionable bool) string {
	switch {
	case feedbackCount >= 5 && hasActionable:
		return "high"
	case feedbackCount >= 2 || hasActionable:
		return "medium"
	default:
		return "low"
	}
}

func degradedResult(content, userID, sessionID string) Result {
	return Result{
		Record: memory.FeedbackRecord{
			ID:        fmt.Sprintf("fb_error_%d", time.Now().UnixMilli()),
			UserID:    userID,
			SessionID: sessionID,
			Content:   content,
			Timestamp: time.Now().UTC(),
			Sentiment: SentimentNeutral,
			Category:  CategoryGeneralInquiry,
			Priority:  PriorityLow,
		},
		Actions:  []memory.ActionItem{},
		Response: degradedReply,
	}
}
