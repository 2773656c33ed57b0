package engine

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/kode4food/timebox"

	"github.com/agentflow/onboard/internal/events"
	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/wizard"
)

// ValidationError reports the required fields a step is still waiting on
type ValidationError struct {
	Missing []api.Name
	StepID  api.StepID
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: step %d missing %v",
		wizard.ErrValidation, e.StepID, e.Missing)
}

func (e *ValidationError) Unwrap() error {
	return wizard.ErrValidation
}

// SaveStepData persists in-progress field values for a step. The first save
// against an unknown wizard starts it. Saving pins the wizard's current
// step, so a repeated identical save raises no event
func (e *Engine) SaveStepData(
	ctx context.Context, wizardID api.WizardID, stepID api.StepID,
	values api.FieldValues,
) error {
	step, err := e.registry.Step(stepID)
	if err != nil {
		return err
	}
	if err := checkValues(step, values); err != nil {
		return err
	}

	return e.execWizard(ctx, wizardID,
		func(st *api.WizardState, ag *WizardAggregator) error {
			if st.CreatedAt.IsZero() {
				if err := events.Raise(ag, api.EventTypeWizardStarted,
					api.WizardStartedEvent{
						WizardID: wizardID,
						Step:     e.registry.First(),
					},
				); err != nil {
					return err
				}
			} else if st.IsTerminal() {
				return ErrWizardFinished
			}

			if isRedundantSave(st, stepID, values) {
				return nil
			}

			return events.Raise(ag, api.EventTypeFieldsSaved,
				api.FieldsSavedEvent{
					Values:   values,
					WizardID: wizardID,
					StepID:   stepID,
				})
		},
	)
}

// CompleteStep marks a step finished once its required fields are all
// populated, advancing the wizard's current step. Completing an already
// completed step is a no-op
func (e *Engine) CompleteStep(
	ctx context.Context, wizardID api.WizardID, stepID api.StepID,
) error {
	step, err := e.registry.Step(stepID)
	if err != nil {
		return err
	}

	return e.execWizard(ctx, wizardID,
		func(st *api.WizardState, ag *WizardAggregator) error {
			if st.CreatedAt.IsZero() {
				return ErrWizardNotFound
			}
			if st.IsTerminal() {
				return ErrWizardFinished
			}
			if st.IsStepCompleted(stepID) {
				return nil
			}

			if missing := step.MissingFields(st.FieldValues); len(missing) > 0 {
				return &ValidationError{StepID: stepID, Missing: missing}
			}

			next, ok := e.registry.Next(stepID)
			if !ok {
				next = stepID
			}
			return events.Raise(ag, api.EventTypeStepCompleted,
				api.StepCompletedEvent{
					WizardID: wizardID,
					StepID:   stepID,
					NextStep: next,
				})
		},
	)
}

// CompleteWizard finishes the overall flow once every registered step has
// been completed. Completing an already completed wizard is a no-op
func (e *Engine) CompleteWizard(
	ctx context.Context, wizardID api.WizardID,
) error {
	return e.execWizard(ctx, wizardID,
		func(st *api.WizardState, ag *WizardAggregator) error {
			if st.CreatedAt.IsZero() {
				return ErrWizardNotFound
			}
			if st.Status == api.WizardCompleted {
				return nil
			}
			if st.Status == api.WizardArchived {
				return ErrWizardFinished
			}

			for _, step := range e.registry.Steps() {
				if !st.IsStepCompleted(step.ID) {
					return fmt.Errorf("%w: step %d not completed",
						wizard.ErrValidation, step.ID)
				}
			}

			return events.Raise(ag, api.EventTypeWizardCompleted,
				api.WizardCompletedEvent{WizardID: wizardID})
		},
	)
}

// GetWizardState retrieves the projected state of a wizard instance
func (e *Engine) GetWizardState(
	ctx context.Context, wizardID api.WizardID,
) (*api.WizardState, error) {
	st, err := e.wizardExec.Exec(ctx, events.WizardKey(wizardID),
		func(st *api.WizardState, ag *WizardAggregator) error {
			if st.CreatedAt.IsZero() {
				return ErrWizardNotFound
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// GetWizardStateSeq retrieves wizard state and its next event sequence
func (e *Engine) GetWizardStateSeq(
	ctx context.Context, wizardID api.WizardID,
) (*api.WizardState, int64, error) {
	var seq int64
	st, err := e.wizardExec.Exec(ctx, events.WizardKey(wizardID),
		func(st *api.WizardState, ag *WizardAggregator) error {
			if st.CreatedAt.IsZero() {
				return ErrWizardNotFound
			}
			seq = ag.NextSequence()
			return nil
		},
	)
	if err != nil {
		return nil, 0, err
	}
	return st, seq, err
}

// ListWizards summarizes the engine's active and completed wizards
func (e *Engine) ListWizards(ctx context.Context) ([]*api.WizardDigest, error) {
	engState, err := e.GetEngineState(ctx)
	if err != nil {
		return nil, err
	}

	var digests []*api.WizardDigest
	for _, info := range engState.Active {
		st, err := e.GetWizardState(ctx, info.ID)
		if err != nil {
			continue
		}
		digests = append(digests, &api.WizardDigest{
			ID:          info.ID,
			Status:      st.Status,
			CurrentStep: st.CurrentStep,
			StartedAt:   info.StartedAt,
		})
	}
	for _, info := range engState.Completed {
		digests = append(digests, &api.WizardDigest{
			ID:          info.ID,
			Status:      api.WizardCompleted,
			CompletedAt: info.CompletedAt,
		})
	}

	slices.SortFunc(digests, func(a, b *api.WizardDigest) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return digests, nil
}

func (e *Engine) execWizard(
	ctx context.Context, wizardID api.WizardID,
	cmd timebox.Command[*api.WizardState],
) error {
	_, err := e.wizardExec.Exec(ctx, events.WizardKey(wizardID), cmd)
	return err
}

func checkValues(step *api.StepDefinition, values api.FieldValues) error {
	for name, value := range values {
		spec, ok := step.Fields[name]
		if !ok {
			return fmt.Errorf("%w: unknown field %q for step %d",
				wizard.ErrValidation, name, step.ID)
		}
		if err := spec.CheckValue(name, value); err != nil {
			return fmt.Errorf("%w: %w", wizard.ErrValidation, err)
		}
	}
	return nil
}

func isRedundantSave(
	st *api.WizardState, stepID api.StepID, values api.FieldValues,
) bool {
	if st.CurrentStep != stepID {
		return false
	}
	for name, value := range values {
		existing, ok := st.FieldValues[name]
		if !ok || !reflect.DeepEqual(existing, value) {
			return false
		}
	}
	return true
}
