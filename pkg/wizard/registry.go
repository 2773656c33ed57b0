package wizard

import (
	"fmt"
	"slices"

	"github.com/agentflow/onboard/pkg/api"
)

// Registry holds the ordered, immutable step definitions of a wizard. Step
// order is fixed at construction; there is no dynamic reordering
type Registry struct {
	byID  map[api.StepID]*api.StepDefinition
	steps []*api.StepDefinition
}

// NewRegistry validates the given step definitions and returns a registry
// with the steps ordered by ascending ID
func NewRegistry(steps ...*api.StepDefinition) (*Registry, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	byID := make(map[api.StepID]*api.StepDefinition, len(steps))
	ordered := make([]*api.StepDefinition, 0, len(steps))
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byID[step.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateStepID, step.ID)
		}
		byID[step.ID] = step
		ordered = append(ordered, step)
	}

	slices.SortFunc(ordered, func(a, b *api.StepDefinition) int {
		return int(a.ID) - int(b.ID)
	})

	return &Registry{byID: byID, steps: ordered}, nil
}

// Steps returns the step definitions in order
func (r *Registry) Steps() []*api.StepDefinition {
	return slices.Clone(r.steps)
}

// Step returns the definition for the given ID
func (r *Registry) Step(id api.StepID) (*api.StepDefinition, error) {
	step, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrStepNotFound, id)
	}
	return step, nil
}

// Contains returns true if the registry defines the given step
func (r *Registry) Contains(id api.StepID) bool {
	_, ok := r.byID[id]
	return ok
}

// First returns the ID of the wizard's initial step
func (r *Registry) First() api.StepID {
	return r.steps[0].ID
}

// Next returns the ID of the step following the given one, or false when
// the given step is the last
func (r *Registry) Next(id api.StepID) (api.StepID, bool) {
	for i, step := range r.steps {
		if step.ID == id {
			if i+1 < len(r.steps) {
				return r.steps[i+1].ID, true
			}
			return 0, false
		}
	}
	return 0, false
}

// Prev returns the ID of the step preceding the given one, or false when
// the given step is the first
func (r *Registry) Prev(id api.StepID) (api.StepID, bool) {
	for i, step := range r.steps {
		if step.ID == id {
			if i > 0 {
				return r.steps[i-1].ID, true
			}
			return 0, false
		}
	}
	return 0, false
}

// IsLast returns true if the given step is the final one
func (r *Registry) IsLast(id api.StepID) bool {
	return len(r.steps) > 0 && r.steps[len(r.steps)-1].ID == id
}

// Len returns the number of steps in the registry
func (r *Registry) Len() int {
	return len(r.steps)
}
