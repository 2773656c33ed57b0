package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentflow/onboard/pkg/api"
)

// Controller orchestrates step transitions for one wizard session. It
// validates the current step before advancing, persists on every
// transition, and enforces at most one in-flight transition at a time;
// concurrent navigation calls are rejected with ErrTransitionInFlight
type Controller struct {
	state    *State
	registry *Registry
	gateway  Gateway
	mu       sync.Mutex
	inFlight bool
	terminal bool
}

// NewController creates a controller positioned at the registry's first
// step with an empty session
func NewController(registry *Registry, gateway Gateway) *Controller {
	return &Controller{
		state:    NewState(registry),
		registry: registry,
		gateway:  gateway,
	}
}

// Resume hydrates the session from the last persisted snapshot. When no
// prior state exists, or the snapshot references a step unknown to the
// registry, the session starts fresh at the first step with empty values
func (c *Controller) Resume(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	snapshot, ok, err := c.gateway.LoadState(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := c.state.Hydrate(snapshot); err != nil {
		c.state = NewState(c.registry)
		return nil
	}

	if snapshot.IsTerminal() {
		c.setTerminal()
	}
	return nil
}

// SetField stores a field value in the session. No validation happens at
// write time; the value is checked when its step is completed
func (c *Controller) SetField(name api.Name, value any) {
	c.state.SetField(name, value)
}

// CurrentStep returns the step the session is positioned on
func (c *Controller) CurrentStep() api.StepID {
	return c.state.CurrentStep()
}

// Completed returns true once the wizard has reached its terminal state
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// State exposes the underlying session state
func (c *Controller) State() *State {
	return c.state
}

// Next completes the current step and advances. Fails with ErrValidation
// when required fields are missing. On the last step it invokes the
// wizard-level completion and transitions to the terminal state
func (c *Controller) Next(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	cur := c.state.CurrentStep()
	if missing := c.state.MissingFields(cur); len(missing) > 0 {
		return fmt.Errorf("%w: step %d missing %v",
			ErrValidation, cur, missing)
	}

	if err := c.persistStep(ctx, cur); err != nil {
		return err
	}
	if err := c.gateway.CompleteStep(ctx, cur); err != nil {
		return err
	}
	if err := c.state.MarkComplete(cur); err != nil {
		return err
	}

	next, ok := c.registry.Next(cur)
	if !ok {
		if err := c.gateway.CompleteWizard(ctx); err != nil {
			return err
		}
		c.setTerminal()
		return nil
	}

	c.state.setCurrent(next)
	return nil
}

// Prev saves the current step's values, complete or not, and moves back
// one step. Fails with ErrNavigation at the first step
func (c *Controller) Prev(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	cur := c.state.CurrentStep()
	prev, ok := c.registry.Prev(cur)
	if !ok {
		return fmt.Errorf("%w: already at first step", ErrNavigation)
	}

	if err := c.persistStep(ctx, cur); err != nil {
		return err
	}

	c.state.setCurrent(prev)
	return nil
}

// JumpTo moves directly to a step that is accessible: at or before the
// current step, or already completed. The current step's values are saved
// first. Fails with ErrNavigation otherwise
func (c *Controller) JumpTo(ctx context.Context, id api.StepID) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if !c.isAccessible(id) {
		return fmt.Errorf("%w: step %d", ErrNavigation, id)
	}

	cur := c.state.CurrentStep()
	if err := c.persistStep(ctx, cur); err != nil {
		return err
	}

	c.state.setCurrent(id)
	return nil
}

// isAccessible applies the revisit rule: a step may be jumped to when it
// is not past the current step, or when it has already been completed
func (c *Controller) isAccessible(id api.StepID) bool {
	if !c.registry.Contains(id) {
		return false
	}
	return id <= c.state.CurrentStep() || c.state.IsCompleted(id)
}

func (c *Controller) persistStep(ctx context.Context, id api.StepID) error {
	err := c.gateway.SaveStepData(ctx, id, c.state.StepValues(id))
	if err != nil {
		return err
	}
	c.state.clearDirty()
	return nil
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		return ErrInvalidState
	}
	if c.inFlight {
		return ErrTransitionInFlight
	}
	c.inFlight = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Controller) setTerminal() {
	c.mu.Lock()
	c.terminal = true
	c.mu.Unlock()
}
