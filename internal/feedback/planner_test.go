package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsy/feedback-assistant/internal/memory"
)

func TestPlan_RespondAlwaysFirst(t *testing.T) {
	p := NewPlanner()

	actions := p.Plan(memory.FeedbackRecord{
		Category: CategoryGeneralInquiry,
		Priority: PriorityLow,
	})

	require.Len(t, actions, 1)
	assert.Equal(t, ActionRespond, actions[0].Type)
	assert.Equal(t, "immediate", actions[0].Priority)
}

func TestPlan_CriticalBugAlertsTeam(t *testing.T) {
	p := NewPlanner()

	actions := p.Plan(memory.FeedbackRecord{
		Category: CategoryBugReport,
		Priority: PriorityCritical,
	})

	require.Len(t, actions, 2)
	assert.Equal(t, ActionAlertTeam, actions[1].Type)
	assert.Equal(t, "immediate", actions[1].Priority)
}

func TestPlan_NonCriticalBugDoesNotAlert(t *testing.T) {
	p := NewPlanner()

	actions := p.Plan(memory.FeedbackRecord{
		Category: CategoryBugReport,
		Priority: PriorityHigh,
	})

	require.Len(t, actions, 1)
	assert.Equal(t, ActionRespond, actions[0].Type)
}

func TestPlan_HighFeatureRequestCreatesTicket(t *testing.T) {
	p := NewPlanner()

	actions := p.Plan(memory.FeedbackRecord{
		Category: CategoryFeatureRequest,
		Priority: PriorityHigh,
	})

	require.Len(t, actions, 2)
	assert.Equal(t, ActionCreateTicket, actions[1].Type)
	assert.Equal(t, "high", actions[1].Priority)
}

func TestPlan_ActionableItemsPlanImplementation(t *testing.T) {
	p := NewPlanner()

	actions := p.Plan(memory.FeedbackRecord{
		Category: CategoryFeatureRequest,
		Priority: PriorityHigh,
		ActionableItems: []memory.Actionable{
			{Type: "add", Description: "dark mode", Confidence: 0.8},
		},
	})

	require.Len(t, actions, 3)
	assert.Equal(t, ActionRespond, actions[0].Type)
	assert.Equal(t, ActionCreateTicket, actions[1].Type)
	assert.Equal(t, ActionPlanImplementation, actions[2].Type)
	assert.Equal(t, "medium", actions[2].Priority)
}
