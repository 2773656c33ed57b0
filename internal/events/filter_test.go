package events_test

import (
	"testing"

	"github.com/kode4food/timebox"
	"github.com/stretchr/testify/assert"

	"github.com/agentflow/onboard/internal/events"
	"github.com/agentflow/onboard/pkg/api"
)

func filterEvent(id api.WizardID, typ api.EventType) *timebox.Event {
	return &timebox.Event{
		AggregateID: events.WizardKey(id),
		Type:        typ,
	}
}

func TestFilterWizard(t *testing.T) {
	filter := events.FilterWizard(api.WizardID("wiz-1"))

	assert.True(t, filter(filterEvent("wiz-1", api.EventTypeFieldsSaved)))
	assert.False(t, filter(filterEvent("wiz-2", api.EventTypeFieldsSaved)))
	assert.False(t, filter(&timebox.Event{AggregateID: events.EngineID}))
}

func TestFilterEvents(t *testing.T) {
	filter := events.FilterEvents(
		api.EventTypeFieldsSaved, api.EventTypeStepCompleted,
	)

	assert.True(t, filter(filterEvent("wiz-1", api.EventTypeFieldsSaved)))
	assert.True(t, filter(filterEvent("wiz-2", api.EventTypeStepCompleted)))
	assert.False(t, filter(filterEvent("wiz-1", api.EventTypeWizardStarted)))
}

func TestAndFilters(t *testing.T) {
	filter := events.AndFilters(
		events.FilterWizard(api.WizardID("wiz-1")),
		events.FilterEvents(api.EventTypeFieldsSaved),
	)

	assert.True(t, filter(filterEvent("wiz-1", api.EventTypeFieldsSaved)))
	assert.False(t, filter(filterEvent("wiz-1", api.EventTypeStepCompleted)))
	assert.False(t, filter(filterEvent("wiz-2", api.EventTypeFieldsSaved)))

	// an empty conjunction matches everything
	all := events.AndFilters()
	assert.True(t, all(filterEvent("wiz-1", api.EventTypeWizardStarted)))
}
