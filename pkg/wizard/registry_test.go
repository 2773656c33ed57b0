package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/wizard"
)

func newTestRegistry(t *testing.T) *wizard.Registry {
	t.Helper()

	registry, err := wizard.NewRegistry(
		&api.StepDefinition{
			ID:    1,
			Title: "Account",
			Fields: api.FieldSpecs{
				"name":  {Role: api.RoleRequired, Type: api.TypeString},
				"email": {Role: api.RoleRequired, Type: api.TypeString},
			},
		},
		&api.StepDefinition{
			ID:    2,
			Title: "Workspace",
			Fields: api.FieldSpecs{
				"workspace": {Role: api.RoleRequired, Type: api.TypeString},
			},
		},
		&api.StepDefinition{
			ID:    3,
			Title: "Preferences",
			Fields: api.FieldSpecs{
				"newsletter": {Role: api.RoleOptional, Type: api.TypeBoolean},
			},
		},
	)
	require.NoError(t, err)
	return registry
}

func TestNewRegistryOrdersSteps(t *testing.T) {
	registry, err := wizard.NewRegistry(
		&api.StepDefinition{ID: 3, Title: "Third"},
		&api.StepDefinition{ID: 1, Title: "First"},
		&api.StepDefinition{ID: 2, Title: "Second"},
	)
	require.NoError(t, err)

	steps := registry.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, api.StepID(1), steps[0].ID)
	assert.Equal(t, api.StepID(2), steps[1].ID)
	assert.Equal(t, api.StepID(3), steps[2].ID)
	assert.Equal(t, api.StepID(1), registry.First())
}

func TestNewRegistryRejectsEmpty(t *testing.T) {
	_, err := wizard.NewRegistry()
	assert.ErrorIs(t, err, wizard.ErrNoSteps)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := wizard.NewRegistry(
		&api.StepDefinition{ID: 1, Title: "First"},
		&api.StepDefinition{ID: 1, Title: "Again"},
	)
	assert.ErrorIs(t, err, wizard.ErrDuplicateStepID)
}

func TestNewRegistryRejectsInvalidSteps(t *testing.T) {
	_, err := wizard.NewRegistry(
		&api.StepDefinition{ID: 0, Title: "Nope"},
	)
	assert.ErrorIs(t, err, api.ErrStepIDInvalid)

	_, err = wizard.NewRegistry(
		&api.StepDefinition{ID: 1},
	)
	assert.ErrorIs(t, err, api.ErrStepTitleEmpty)
}

func TestRegistryNavigation(t *testing.T) {
	registry := newTestRegistry(t)

	next, ok := registry.Next(1)
	assert.True(t, ok)
	assert.Equal(t, api.StepID(2), next)

	_, ok = registry.Next(3)
	assert.False(t, ok)
	assert.True(t, registry.IsLast(3))
	assert.False(t, registry.IsLast(1))

	prev, ok := registry.Prev(2)
	assert.True(t, ok)
	assert.Equal(t, api.StepID(1), prev)

	_, ok = registry.Prev(1)
	assert.False(t, ok)
}

func TestRegistryLookup(t *testing.T) {
	registry := newTestRegistry(t)

	step, err := registry.Step(2)
	require.NoError(t, err)
	assert.Equal(t, "Workspace", step.Title)

	_, err = registry.Step(99)
	assert.ErrorIs(t, err, wizard.ErrStepNotFound)

	assert.True(t, registry.Contains(1))
	assert.False(t, registry.Contains(99))
	assert.Equal(t, 3, registry.Len())
}
