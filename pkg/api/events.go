package api

import "github.com/kode4food/timebox"

type (
	// EventType identifies a wizard or engine lifecycle event
	EventType = timebox.EventType

	// WizardStartedEvent is emitted the first time a wizard is touched
	WizardStartedEvent struct {
		WizardID WizardID `json:"wizard_id"`
		Step     StepID   `json:"step"`
	}

	// FieldsSavedEvent is emitted when in-progress values for a step are
	// persisted. Saving also pins the wizard's current step
	FieldsSavedEvent struct {
		Values   FieldValues `json:"values"`
		WizardID WizardID    `json:"wizard_id"`
		StepID   StepID      `json:"step_id"`
	}

	// StepCompletedEvent is emitted when a step's required fields have all
	// been satisfied and the step is finished. NextStep carries the step
	// the wizard advances to, already resolved against the registry
	StepCompletedEvent struct {
		WizardID WizardID `json:"wizard_id"`
		StepID   StepID   `json:"step_id"`
		NextStep StepID   `json:"next_step"`
	}

	// WizardCompletedEvent is emitted when the overall flow finishes
	WizardCompletedEvent struct {
		WizardID WizardID `json:"wizard_id"`
	}

	// WizardArchivedEvent is emitted when a completed wizard's snapshot
	// has been moved to blob storage
	WizardArchivedEvent struct {
		WizardID   WizardID `json:"wizard_id"`
		ArchiveKey string   `json:"archive_key"`
	}

	// WizardActivatedEvent is raised on the engine aggregate when a
	// wizard instance becomes active
	WizardActivatedEvent struct {
		WizardID WizardID `json:"wizard_id"`
	}

	// WizardDeactivatedEvent is raised on the engine aggregate when a
	// wizard instance finishes and awaits archival
	WizardDeactivatedEvent struct {
		WizardID WizardID `json:"wizard_id"`
	}
)

const (
	EventTypeWizardStarted   EventType = "wizard_started"
	EventTypeFieldsSaved     EventType = "fields_saved"
	EventTypeStepCompleted   EventType = "step_completed"
	EventTypeWizardCompleted EventType = "wizard_completed"
	EventTypeWizardArchived  EventType = "wizard_archived"

	EventTypeWizardActivated   EventType = "wizard_activated"
	EventTypeWizardDeactivated EventType = "wizard_deactivated"
)
