package wizard

import "errors"

var (
	// ErrValidation indicates required fields are missing for the step
	// being completed. The session state is left untouched
	ErrValidation = errors.New("required fields missing")

	// ErrNavigation indicates a jump to a step that is not yet accessible
	ErrNavigation = errors.New("step not accessible")

	// ErrInvalidState indicates a transition was attempted after the
	// wizard reached its terminal state
	ErrInvalidState = errors.New("wizard already completed")

	// ErrInvalidSnapshot indicates a persisted snapshot references a step
	// unknown to the registry
	ErrInvalidSnapshot = errors.New("snapshot references unknown step")

	// ErrTransitionInFlight indicates a navigation call was made while a
	// previous transition was still pending
	ErrTransitionInFlight = errors.New("transition already in flight")

	// ErrStepNotFound indicates a step ID absent from the registry
	ErrStepNotFound = errors.New("step not found")

	// ErrNoSteps indicates a registry was constructed without steps
	ErrNoSteps = errors.New("registry requires at least one step")

	// ErrDuplicateStepID indicates two step definitions share an ID
	ErrDuplicateStepID = errors.New("duplicate step ID")
)
