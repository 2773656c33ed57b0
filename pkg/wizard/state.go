package wizard

import (
	"fmt"
	"maps"
	"time"

	"github.com/agentflow/onboard/pkg/api"
)

// State is the in-memory representation of one wizard session: the current
// step, accumulated field values across all steps, and the set of completed
// steps. It is owned by a single Controller and is not safe for concurrent
// use on its own
type State struct {
	registry  *Registry
	values    api.FieldValues
	completed map[api.StepID]time.Time
	current   api.StepID
	dirty     bool
}

// NewState creates an empty session positioned at the registry's first step
func NewState(registry *Registry) *State {
	return &State{
		registry:  registry,
		values:    api.FieldValues{},
		completed: map[api.StepID]time.Time{},
		current:   registry.First(),
	}
}

// SetField stores a field value unconditionally. Validation is deferred to
// the step-completion check. Marks the state dirty for persistence
func (s *State) SetField(name api.Name, value any) {
	s.values[name] = value
	s.dirty = true
}

// Field returns a previously stored field value
func (s *State) Field(name api.Name) (any, bool) {
	value, ok := s.values[name]
	return value, ok
}

// CurrentStep returns the step the session is positioned on
func (s *State) CurrentStep() api.StepID {
	return s.current
}

// IsStepComplete returns true iff every required field of the step has a
// defined, non-empty value. Unknown steps are never complete
func (s *State) IsStepComplete(id api.StepID) bool {
	step, err := s.registry.Step(id)
	if err != nil {
		return false
	}
	return len(step.MissingFields(s.values)) == 0
}

// MissingFields returns the required fields of a step that are still unset
func (s *State) MissingFields(id api.StepID) []api.Name {
	step, err := s.registry.Step(id)
	if err != nil {
		return nil
	}
	return step.MissingFields(s.values)
}

// MarkComplete records a step as completed. Fails with ErrValidation when
// required fields are missing; re-marking a completed step is a no-op
func (s *State) MarkComplete(id api.StepID) error {
	if !s.registry.Contains(id) {
		return fmt.Errorf("%w: %d", ErrStepNotFound, id)
	}
	if missing := s.MissingFields(id); len(missing) > 0 {
		return fmt.Errorf("%w: step %d missing %v",
			ErrValidation, id, missing)
	}
	if _, done := s.completed[id]; done {
		return nil
	}
	s.completed[id] = time.Now()
	return nil
}

// IsCompleted returns true if the step has been marked complete
func (s *State) IsCompleted(id api.StepID) bool {
	_, ok := s.completed[id]
	return ok
}

// StepValues returns the subset of field values declared by the given step.
// This is the payload persisted by per-step saves
func (s *State) StepValues(id api.StepID) api.FieldValues {
	step, err := s.registry.Step(id)
	if err != nil {
		return api.FieldValues{}
	}
	values := api.FieldValues{}
	for name := range step.Fields {
		if value, ok := s.values[name]; ok {
			values[name] = value
		}
	}
	return values
}

// Snapshot returns a pure projection of the session for persistence
func (s *State) Snapshot() *api.WizardState {
	return &api.WizardState{
		CurrentStep:    s.current,
		FieldValues:    maps.Clone(s.values),
		CompletedSteps: maps.Clone(s.completed),
	}
}

// Hydrate replaces the session state wholesale from a persisted snapshot.
// Fails with ErrInvalidSnapshot when the snapshot's current step is unknown
// to the registry; the session is left unchanged in that case. Completed
// steps the registry does not define are dropped so the session only ever
// tracks registry steps
func (s *State) Hydrate(snapshot *api.WizardState) error {
	if !s.registry.Contains(snapshot.CurrentStep) {
		return fmt.Errorf("%w: step %d",
			ErrInvalidSnapshot, snapshot.CurrentStep)
	}

	s.current = snapshot.CurrentStep
	s.values = maps.Clone(snapshot.FieldValues)
	if s.values == nil {
		s.values = api.FieldValues{}
	}
	s.completed = map[api.StepID]time.Time{}
	for _, id := range snapshot.CompletedStepIDs() {
		if s.registry.Contains(id) {
			s.completed[id] = snapshot.CompletedSteps[id]
		}
	}
	s.dirty = false
	return nil
}

// Dirty returns true when fields have changed since the last persist
func (s *State) Dirty() bool {
	return s.dirty
}

func (s *State) setCurrent(id api.StepID) {
	s.current = id
}

func (s *State) clearDirty() {
	s.dirty = false
}
