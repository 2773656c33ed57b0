package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/wizard"
)

type mockGateway struct {
	mu              sync.Mutex
	saved           map[api.StepID]api.FieldValues
	completedSteps  []api.StepID
	wizardCompleted bool
	snapshot        *api.WizardState
	hasSnapshot     bool
	saveErr         error
	completeErr     error
	loadErr         error
	saveStarted     chan struct{}
	saveRelease     chan struct{}
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		saved: map[api.StepID]api.FieldValues{},
	}
}

func (g *mockGateway) SaveStepData(
	_ context.Context, id api.StepID, values api.FieldValues,
) error {
	if g.saveStarted != nil {
		g.saveStarted <- struct{}{}
		<-g.saveRelease
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved[id] = values
	return nil
}

func (g *mockGateway) CompleteStep(_ context.Context, id api.StepID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.completeErr != nil {
		return g.completeErr
	}
	g.completedSteps = append(g.completedSteps, id)
	return nil
}

func (g *mockGateway) CompleteWizard(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.wizardCompleted = true
	return nil
}

func (g *mockGateway) LoadState(
	context.Context,
) (*api.WizardState, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loadErr != nil {
		return nil, false, g.loadErr
	}
	return g.snapshot, g.hasSnapshot, nil
}

func TestControllerWalkthrough(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	ctrl := wizard.NewController(registry, gateway)
	ctx := context.Background()

	// required fields unset, cannot advance
	err := ctrl.Next(ctx)
	assert.ErrorIs(t, err, wizard.ErrValidation)
	assert.Equal(t, api.StepID(1), ctrl.CurrentStep())

	ctrl.SetField("name", "Ada")
	ctrl.SetField("email", "ada@example.com")
	require.NoError(t, ctrl.Next(ctx))
	assert.Equal(t, api.StepID(2), ctrl.CurrentStep())
	assert.Equal(t, api.FieldValues{
		"name":  "Ada",
		"email": "ada@example.com",
	}, gateway.saved[1])
	assert.Equal(t, []api.StepID{1}, gateway.completedSteps)

	ctrl.SetField("workspace", "lovelace-labs")
	require.NoError(t, ctrl.Next(ctx))
	assert.Equal(t, api.StepID(3), ctrl.CurrentStep())

	// last step has only optional fields
	require.NoError(t, ctrl.Next(ctx))
	assert.True(t, ctrl.Completed())
	assert.True(t, gateway.wizardCompleted)

	// terminal wizards reject further navigation
	assert.ErrorIs(t, ctrl.Next(ctx), wizard.ErrInvalidState)
	assert.ErrorIs(t, ctrl.Prev(ctx), wizard.ErrInvalidState)
	assert.ErrorIs(t, ctrl.JumpTo(ctx, 1), wizard.ErrInvalidState)
}

func TestControllerPrev(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	ctrl := wizard.NewController(registry, gateway)
	ctx := context.Background()

	err := ctrl.Prev(ctx)
	assert.ErrorIs(t, err, wizard.ErrNavigation)

	ctrl.SetField("name", "Ada")
	ctrl.SetField("email", "ada@example.com")
	require.NoError(t, ctrl.Next(ctx))

	// going back saves in-progress values for the step being left
	ctrl.SetField("workspace", "draft")
	require.NoError(t, ctrl.Prev(ctx))
	assert.Equal(t, api.StepID(1), ctrl.CurrentStep())
	assert.Equal(t, api.FieldValues{"workspace": "draft"}, gateway.saved[2])
}

func TestControllerJumpRules(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	ctrl := wizard.NewController(registry, gateway)
	ctx := context.Background()

	// jumping ahead of the current step is not allowed
	err := ctrl.JumpTo(ctx, 3)
	assert.ErrorIs(t, err, wizard.ErrNavigation)

	// unknown steps are never accessible
	err = ctrl.JumpTo(ctx, 99)
	assert.ErrorIs(t, err, wizard.ErrNavigation)

	ctrl.SetField("name", "Ada")
	ctrl.SetField("email", "ada@example.com")
	require.NoError(t, ctrl.Next(ctx))
	ctrl.SetField("workspace", "lovelace-labs")
	require.NoError(t, ctrl.Next(ctx))

	// revisiting an earlier, completed step
	require.NoError(t, ctrl.JumpTo(ctx, 1))
	assert.Equal(t, api.StepID(1), ctrl.CurrentStep())

	// step 2 was completed, so jumping forward to it is allowed
	require.NoError(t, ctrl.JumpTo(ctx, 2))
	assert.Equal(t, api.StepID(2), ctrl.CurrentStep())

	// step 3 was never completed and is past the current step
	err = ctrl.JumpTo(ctx, 3)
	assert.ErrorIs(t, err, wizard.ErrNavigation)
}

func TestControllerResume(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	gateway.hasSnapshot = true
	gateway.snapshot = &api.WizardState{
		CurrentStep: 2,
		FieldValues: api.FieldValues{
			"name":  "Ada",
			"email": "ada@example.com",
		},
	}

	ctrl := wizard.NewController(registry, gateway)
	require.NoError(t, ctrl.Resume(context.Background()))

	assert.Equal(t, api.StepID(2), ctrl.CurrentStep())
	value, ok := ctrl.State().Field("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", value)
}

func TestControllerResumeFresh(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()

	ctrl := wizard.NewController(registry, gateway)
	require.NoError(t, ctrl.Resume(context.Background()))
	assert.Equal(t, api.StepID(1), ctrl.CurrentStep())
}

func TestControllerResumeBadSnapshot(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	gateway.hasSnapshot = true
	gateway.snapshot = &api.WizardState{CurrentStep: 99}

	// a snapshot referencing an unknown step falls back to a fresh session
	ctrl := wizard.NewController(registry, gateway)
	require.NoError(t, ctrl.Resume(context.Background()))
	assert.Equal(t, api.StepID(1), ctrl.CurrentStep())
}

func TestControllerResumeTerminal(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	gateway.hasSnapshot = true
	gateway.snapshot = &api.WizardState{
		CurrentStep: 3,
		Status:      api.WizardCompleted,
	}

	ctrl := wizard.NewController(registry, gateway)
	require.NoError(t, ctrl.Resume(context.Background()))
	assert.True(t, ctrl.Completed())
	assert.ErrorIs(t, ctrl.Next(context.Background()), wizard.ErrInvalidState)
}

func TestControllerResumeLoadError(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	gateway.loadErr = errors.New("store offline")

	ctrl := wizard.NewController(registry, gateway)
	assert.Error(t, ctrl.Resume(context.Background()))
}

func TestControllerGatewayFailure(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	gateway.saveErr = errors.New("store offline")

	ctrl := wizard.NewController(registry, gateway)
	ctx := context.Background()

	ctrl.SetField("name", "Ada")
	ctrl.SetField("email", "ada@example.com")

	// a failed persist leaves the session exactly where it was
	require.Error(t, ctrl.Next(ctx))
	assert.Equal(t, api.StepID(1), ctrl.CurrentStep())
	assert.False(t, ctrl.State().IsCompleted(1))
	assert.True(t, ctrl.State().Dirty())

	// a failed step completion does likewise
	gateway.saveErr = nil
	gateway.completeErr = errors.New("store offline")
	require.Error(t, ctrl.Next(ctx))
	assert.Equal(t, api.StepID(1), ctrl.CurrentStep())
	assert.False(t, ctrl.State().IsCompleted(1))

	// retrying the same transition after the outage succeeds
	gateway.completeErr = nil
	require.NoError(t, ctrl.Next(ctx))
	assert.Equal(t, api.StepID(2), ctrl.CurrentStep())
	assert.True(t, ctrl.State().IsCompleted(1))
}

func TestControllerSingleTransition(t *testing.T) {
	registry := newTestRegistry(t)
	gateway := newMockGateway()
	gateway.saveStarted = make(chan struct{})
	gateway.saveRelease = make(chan struct{})

	ctrl := wizard.NewController(registry, gateway)
	ctx := context.Background()

	ctrl.SetField("name", "Ada")
	ctrl.SetField("email", "ada@example.com")

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Next(ctx)
	}()

	// first transition is blocked inside the gateway save
	<-gateway.saveStarted
	assert.ErrorIs(t, ctrl.Next(ctx), wizard.ErrTransitionInFlight)
	assert.ErrorIs(t, ctrl.Prev(ctx), wizard.ErrTransitionInFlight)

	close(gateway.saveRelease)
	require.NoError(t, <-done)
	assert.Equal(t, api.StepID(2), ctrl.CurrentStep())
}
