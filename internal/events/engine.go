package events

import (
	"github.com/kode4food/timebox"

	"github.com/agentflow/onboard/pkg/api"
)

const enginePrefix = "engine"

var (
	// EngineID is the aggregate ID of the engine's global state
	EngineID = timebox.NewAggregateID(enginePrefix)

	// EngineAppliers contains the event applier functions for the engine
	// aggregate, which tracks active and completed wizards
	EngineAppliers = timebox.Appliers[*api.EngineState]{
		api.EventTypeWizardActivated: timebox.MakeApplier(
			wizardActivated,
		),
		api.EventTypeWizardDeactivated: timebox.MakeApplier(
			wizardDeactivated,
		),
		api.EventTypeWizardArchived: timebox.MakeApplier(
			engineWizardArchived,
		),
	}
)

// NewEngineState creates an empty engine state
func NewEngineState() *api.EngineState {
	return &api.EngineState{
		Active:    map[api.WizardID]*api.ActiveWizardInfo{},
		Completed: map[api.WizardID]*api.CompletedWizardInfo{},
	}
}

// IsEngineEvent returns true if the event belongs to the engine aggregate
func IsEngineEvent(ev *timebox.Event) bool {
	return len(ev.AggregateID) >= 1 && ev.AggregateID[0] == enginePrefix
}

func wizardActivated(
	st *api.EngineState, ev *timebox.Event, data api.WizardActivatedEvent,
) *api.EngineState {
	return st.
		SetActiveWizard(data.WizardID, &api.ActiveWizardInfo{
			ID:         data.WizardID,
			StartedAt:  ev.Timestamp,
			LastActive: ev.Timestamp,
		}).
		SetLastUpdated(ev.Timestamp)
}

func wizardDeactivated(
	st *api.EngineState, ev *timebox.Event, data api.WizardDeactivatedEvent,
) *api.EngineState {
	return st.
		DeleteActiveWizard(data.WizardID).
		SetCompletedWizard(data.WizardID, &api.CompletedWizardInfo{
			ID:          data.WizardID,
			CompletedAt: ev.Timestamp,
		}).
		SetLastUpdated(ev.Timestamp)
}

func engineWizardArchived(
	st *api.EngineState, ev *timebox.Event, data api.WizardArchivedEvent,
) *api.EngineState {
	return st.
		DeleteCompletedWizard(data.WizardID).
		SetLastUpdated(ev.Timestamp)
}
