// Package feedback turns free-text feedback into classified records,
// follow-up actions and template replies. The classifier is a
// deterministic, explainable keyword scorer, not a learned model.
package feedback

import (
	"regexp"
	"strings"

	"github.com/shipsy/feedback-assistant/internal/memory"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Priority labels.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Feedback categories. CategoryGeneralInquiry is the default when no
// keyword scores.
const (
	CategoryBugReport         = "bug_report"
	CategoryFeatureRequest    = "feature_request"
	CategoryUIFeedback        = "ui_feedback"
	CategoryPerformanceIssue  = "performance_issue"
	CategoryContentSuggestion = "content_suggestion"
	CategoryPraise            = "praise"
	CategoryGeneralInquiry    = "general_inquiry"
)

// Categories lists every category the classifier can produce.
var Categories = []string{
	CategoryBugReport,
	CategoryFeatureRequest,
	CategoryUIFeedback,
	CategoryPerformanceIssue,
	CategoryContentSuggestion,
	CategoryPraise,
	CategoryGeneralInquiry,
}

var (
	positiveWords = []string{"good", "great", "excellent", "love", "amazing", "perfect", "helpful"}
	negativeWords = []string{"bad", "terrible", "hate", "broken", "slow", "confusing", "frustrating"}

	urgencyKeywords = []string{"urgent", "critical", "immediately", "asap", "broken"}

	// Ordered: a later category must strictly outscore an earlier one to win.
	categoryKeywords = []struct {
		name     string
		keywords []string
	}{
		{CategoryBugReport, []string{"bug", "error", "broken", "not working", "issue", "problem"}},
		{CategoryFeatureRequest, []string{"add", "feature", "would like", "suggestion", "implement"}},
		{CategoryUIFeedback, []string{"design", "layout", "color", "button", "interface", "look"}},
		{CategoryPerformanceIssue, []string{"slow", "loading", "performance", "speed", "lag"}},
		{CategoryContentSuggestion, []string{"content", "text", "information", "copy", "wording"}},
		{CategoryPraise, []string{"thank", "great", "excellent", "love", "amazing"}},
		{CategoryGeneralInquiry, []string{"how", "what", "when", "where", "help", "question"}},
	}

	actionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)please (add|implement|create|fix|change|update) (.+)`),
		regexp.MustCompile(`(?i)could you (add|implement|create|fix|change|update) (.+)`),
		regexp.MustCompile(`(?i)would like to (see|have|get) (.+)`),
		regexp.MustCompile(`(?i)suggestion: (.+)`),
	}
)

// DefaultCategoryWeights is the per-category priority contribution.
// Inherited configuration with no documented derivation; override via
// ClassifierConfig rather than editing.
var DefaultCategoryWeights = map[string]int{
	CategoryBugReport:         3,
	CategoryPerformanceIssue:  3,
	CategoryFeatureRequest:    1,
	CategoryUIFeedback:        1,
	CategoryContentSuggestion: 1,
	CategoryPraise:            0,
	CategoryGeneralInquiry:    0,
}

// Analysis is the classifier output for one piece of feedback.
type Analysis struct {
	Sentiment       string
	Category        string
	Priority        string
	ActionableItems []memory.Actionable
	Confidence      float64
}

// ClassifierConfig overrides the tuning constants. Zero values select the
// defaults.
type ClassifierConfig struct {
	CategoryWeights map[string]int
}

type Classifier struct {
	weights map[string]int
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	weights := cfg.CategoryWeights
	if weights == nil {
		weights = DefaultCategoryWeights
	}
	return &Classifier{weights: weights}
}

// Analyze classifies content into sentiment, category, priority, extracted
// actionable items and a confidence score.
func (c *Classifier) Analyze(content string) Analysis {
	sentiment := c.analyzeSentiment(content)
	category := c.classifyCategory(content)
	priority := c.assessPriority(content, sentiment, category)
	items := c.extractActionableItems(content)

	return Analysis{
		Sentiment:       sentiment,
		Category:        category,
		Priority:        priority,
		ActionableItems: items,
		Confidence:      c.calculateConfidence(sentiment, category, priority),
	}
}

// analyzeSentiment counts exact token matches against the fixed word
// lists. Ties, including zero matches on both sides, resolve to neutral.
func (c *Classifier) analyzeSentiment(content string) string {
	positiveScore := 0
	negativeScore := 0

	for _, word := range strings.Fields(strings.ToLower(content)) {
		if containsWord(positiveWords, word) {
			positiveScore++
		}
		if containsWord(negativeWords, word) {
			negativeScore++
		}
	}

	switch {
	case positiveScore > negativeScore:
		return SentimentPositive
	case negativeScore > positiveScore:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// classifyCategory counts substring keyword hits per category and keeps
// the highest. A later category must strictly beat the running best, so
// ties keep the first-encountered category in table order; all-zero falls
// back to general_inquiry.
func (c *Classifier) classifyCategory(content string) string {
	contentLower := strings.ToLower(content)

	bestMatch := CategoryGeneralInquiry
	maxScore := 0

	for _, entry := range categoryKeywords {
		score := 0
		for _, keyword := range entry.keywords {
			if strings.Contains(contentLower, keyword) {
				score++
			}
		}
		if score > maxScore {
			maxScore = score
			bestMatch = entry.name
		}
	}

	return bestMatch
}

// assessPriority maps an additive integer score to a priority label.
func (c *Classifier) assessPriority(content, sentiment, category string) string {
	score := 0

	if sentiment == SentimentNegative {
		score += 2
	}
	if sentiment == SentimentPositive {
		score--
	}

	score += c.weights[category]

	contentLower := strings.ToLower(content)
	for _, keyword := range urgencyKeywords {
		if strings.Contains(contentLower, keyword) {
			score += 2
			break
		}
	}

	switch {
	case score >= 5:
		return PriorityCritical
	case score >= 3:
		return PriorityHigh
	case score >= 1:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// extractActionableItems runs the fixed request patterns over the raw
// content. Matches across patterns are all retained, no de-duplication.
func (c *Classifier) extractActionableItems(content string) []memory.Actionable {
	var items []memory.Actionable

	for _, pattern := range actionPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			item := memory.Actionable{Confidence: 0.8}
			if len(match) >= 3 {
				item.Type = strings.ToLower(match[1])
				item.Description = match[2]
			} else {
				item.Type = "general"
				item.Description = match[1]
			}
			items = append(items, item)
		}
	}

	return items
}

// calculateConfidence starts at 0.5 and rewards every non-default signal,
// capped at 1.0. A fully default classification stays at the floor.
func (c *Classifier) calculateConfidence(sentiment, category, priority string) float64 {
	confidence := 0.5

	if sentiment != SentimentNeutral {
		confidence += 0.2
	}
	if category != CategoryGeneralInquiry {
		confidence += 0.2
	}
	if priority != PriorityLow {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func containsWord(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}
