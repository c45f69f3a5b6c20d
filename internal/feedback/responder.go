package feedback

import "github.com/shipsy/feedback-assistant/internal/memory"

// anyPriority matches any priority when a category has one blanket reply.
const anyPriority = "any"

// genericReply is the final fallback for category/priority pairs the
// template table does not cover. Several categories (performance_issue,
// content_suggestion, general_inquiry) always land here; that is graceful
// degradation, not missing data.
const genericReply = "Thank you for your feedback. I've recorded your input and our team will review it."

var responseTemplates = map[string]map[string]string{
	CategoryBugReport: {
		PriorityCritical: "I understand you've encountered a critical issue. I've immediately flagged this for our development team and will ensure it gets priority attention. Can you provide any additional details about when this occurs?",
		PriorityHigh:     "Thank you for reporting this bug. I've logged the issue and our team will investigate. In the meantime, is there a workaround I can suggest?",
		PriorityMedium:   "I've noted this issue in our system. We'll look into it during our next development cycle. Thanks for helping us improve!",
		PriorityLow:      "Thanks for the feedback. I've recorded this minor issue for future consideration.",
	},
	CategoryFeatureRequest: {
		PriorityHigh:   "That's an excellent suggestion! I can see how this feature would be valuable. I've added it to our development roadmap with high priority.",
		PriorityMedium: "Great idea! I've logged this feature request for our team to evaluate. We'll consider it for future updates.",
		PriorityLow:    "Thanks for the suggestion. I've noted it for potential future enhancements.",
	},
	CategoryPraise: {
		anyPriority: "Thank you so much for the positive feedback! It really motivates our team. Is there anything specific you'd like to see improved or added?",
	},
	CategoryUIFeedback: {
		anyPriority: "I appreciate your design feedback. Visual improvements are important to us. I've noted your suggestions for our design team to review.",
	},
}

// Responder selects a template reply for a classified record.
type Responder struct{}

func NewResponder() *Responder {
	return &Responder{}
}

// Generate looks up template[category][priority], then
// template[category][any], then the generic fallback.
func (r *Responder) Generate(rec memory.FeedbackRecord) string {
	byPriority, ok := responseTemplates[rec.Category]
	if !ok {
		return genericReply
	}
	if reply, ok := byPriority[rec.Priority]; ok {
		return reply
	}
	if reply, ok := byPriority[anyPriority]; ok {
		return reply
	}
	return genericReply
}
