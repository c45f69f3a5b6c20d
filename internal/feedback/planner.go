package feedback

import "github.com/shipsy/feedback-assistant/internal/memory"

// Follow-up action types.
const (
	ActionRespond            = "respond"
	ActionAlertTeam          = "alert_team"
	ActionCreateTicket       = "create_ticket"
	ActionPlanImplementation = "plan_implementation"
)

// Planner maps a classified record to its follow-up actions.
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

// Plan returns the action list for a record. The respond action always
// comes first; the conditional actions follow in fixed order.
func (p *Planner) Plan(rec memory.FeedbackRecord) []memory.ActionItem {
	actions := []memory.ActionItem{{
		Type:        ActionRespond,
		Priority:    "immediate",
		Description: "Generate contextual response to user",
	}}

	if rec.Category == CategoryBugReport && rec.Priority == PriorityCritical {
		actions = append(actions, memory.ActionItem{
			Type:        ActionAlertTeam,
			Priority:    "immediate",
			Description: "Alert development team about critical bug",
		})
	}

	if rec.Category == CategoryFeatureRequest && rec.Priority == PriorityHigh {
		actions = append(actions, memory.ActionItem{
			Type:        ActionCreateTicket,
			Priority:    "high",
			Description: "Create development ticket for feature request",
		})
	}

	if len(rec.ActionableItems) > 0 {
		actions = append(actions, memory.ActionItem{
			Type:        ActionPlanImplementation,
			Priority:    "medium",
			Description: "Plan implementation of suggested changes",
		})
	}

	return actions
}
