package events

import (
	"github.com/kode4food/timebox"

	"github.com/agentflow/onboard/pkg/api"
)

const WizardPrefix = "wizard"

// WizardAppliers contains the event applier functions for wizard events
var WizardAppliers = timebox.Appliers[*api.WizardState]{
	api.EventTypeWizardStarted:   timebox.MakeApplier(wizardStarted),
	api.EventTypeFieldsSaved:     timebox.MakeApplier(fieldsSaved),
	api.EventTypeStepCompleted:   timebox.MakeApplier(stepCompleted),
	api.EventTypeWizardCompleted: timebox.MakeApplier(wizardCompleted),
	api.EventTypeWizardArchived:  timebox.MakeApplier(wizardArchived),
}

// NewWizardState creates an empty wizard state with initialized maps for
// field values and completed steps
func NewWizardState() *api.WizardState {
	return &api.WizardState{
		FieldValues:    api.FieldValues{},
		CompletedSteps: api.CompletedSteps{},
	}
}

// WizardKey returns the aggregate ID for a wizard instance
func WizardKey[T ~string](wizardID T) timebox.AggregateID {
	return timebox.NewAggregateID(WizardPrefix, timebox.ID(wizardID))
}

// IsWizardEvent returns true if the event belongs to a wizard aggregate
func IsWizardEvent(ev *timebox.Event) bool {
	return len(ev.AggregateID) >= 2 && ev.AggregateID[0] == WizardPrefix
}

func wizardStarted(
	_ *api.WizardState, ev *timebox.Event, data api.WizardStartedEvent,
) *api.WizardState {
	return &api.WizardState{
		ID:             data.WizardID,
		Status:         api.WizardActive,
		CurrentStep:    data.Step,
		FieldValues:    api.FieldValues{},
		CompletedSteps: api.CompletedSteps{},
		CreatedAt:      ev.Timestamp,
		LastUpdated:    ev.Timestamp,
	}
}

func fieldsSaved(
	st *api.WizardState, ev *timebox.Event, data api.FieldsSavedEvent,
) *api.WizardState {
	return st.
		MergeFieldValues(data.Values).
		SetCurrentStep(data.StepID).
		SetLastUpdated(ev.Timestamp)
}

func stepCompleted(
	st *api.WizardState, ev *timebox.Event, data api.StepCompletedEvent,
) *api.WizardState {
	return st.
		SetStepCompleted(data.StepID, ev.Timestamp).
		SetCurrentStep(data.NextStep).
		SetLastUpdated(ev.Timestamp)
}

func wizardCompleted(
	st *api.WizardState, ev *timebox.Event, _ api.WizardCompletedEvent,
) *api.WizardState {
	return st.
		SetStatus(api.WizardCompleted).
		SetCompletedAt(ev.Timestamp).
		SetLastUpdated(ev.Timestamp)
}

func wizardArchived(
	st *api.WizardState, ev *timebox.Event, _ api.WizardArchivedEvent,
) *api.WizardState {
	return st.
		SetStatus(api.WizardArchived).
		SetLastUpdated(ev.Timestamp)
}
