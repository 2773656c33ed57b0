package wizard

import (
	"context"

	"github.com/agentflow/onboard/pkg/api"
)

// Gateway abstracts the persistence backend for one wizard instance. All
// operations map to a single network call; failures are returned to the
// caller without mutating session state, so a retry is simply the same
// transition invoked again
type Gateway interface {
	// SaveStepData persists in-progress values for a step without marking
	// it complete. Safe to call repeatedly; the write is an idempotent
	// overwrite, not an append
	SaveStepData(context.Context, api.StepID, api.FieldValues) error

	// CompleteStep records that a step has been finished. The server is
	// the source of truth for completion state once this returns
	CompleteStep(context.Context, api.StepID) error

	// CompleteWizard signals the overall flow is done. Repeat calls are a
	// caller error but tolerated as a server-side no-op
	CompleteWizard(context.Context) error

	// LoadState fetches the last persisted snapshot. The second return is
	// false when the wizard was never started; that is not an error
	LoadState(context.Context) (*api.WizardState, bool, error)
}
