package events

import (
	"slices"

	"github.com/kode4food/timebox"

	"github.com/agentflow/onboard/pkg/api"
)

// EventFilter reports whether a streamed event matches a subscription
type EventFilter func(*timebox.Event) bool

// FilterWizard matches events belonging to the given wizard instance
func FilterWizard(wizardID api.WizardID) EventFilter {
	key := WizardKey(wizardID)
	return func(ev *timebox.Event) bool {
		return slices.Equal(ev.AggregateID, key)
	}
}

// FilterEvents matches events whose type is one of the given types
func FilterEvents(types ...timebox.EventType) EventFilter {
	return func(ev *timebox.Event) bool {
		return slices.Contains(types, ev.Type)
	}
}

// AndFilters matches events that satisfy all the given filters
func AndFilters(filters ...EventFilter) EventFilter {
	return func(ev *timebox.Event) bool {
		for _, f := range filters {
			if !f(ev) {
				return false
			}
		}
		return true
	}
}
