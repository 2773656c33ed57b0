package api

import (
	"maps"
	"slices"
	"time"
)

type (
	// WizardStatus represents the lifecycle state of a wizard instance
	WizardStatus string

	// FieldValues accumulates field values across all steps of a wizard
	FieldValues map[Name]any

	// CompletedSteps maps completed step IDs to their completion times
	CompletedSteps map[StepID]time.Time

	// WizardState is the projected state of a wizard instance. It doubles
	// as the snapshot exchanged with clients for resumption
	WizardState struct {
		CreatedAt      time.Time      `json:"created_at"`
		CompletedAt    time.Time      `json:"completed_at,omitempty"`
		LastUpdated    time.Time      `json:"last_updated"`
		FieldValues    FieldValues    `json:"field_values"`
		CompletedSteps CompletedSteps `json:"completed_steps"`
		ID             WizardID       `json:"id"`
		Status         WizardStatus   `json:"status"`
		CurrentStep    StepID         `json:"current_step"`
	}

	// EngineState contains the global state of the wizard engine
	EngineState struct {
		LastUpdated time.Time                         `json:"last_updated"`
		Active      map[WizardID]*ActiveWizardInfo    `json:"active"`
		Completed   map[WizardID]*CompletedWizardInfo `json:"completed"`
	}

	// ActiveWizardInfo tracks basic metadata for in-progress wizards
	ActiveWizardInfo struct {
		ID         WizardID  `json:"id"`
		StartedAt  time.Time `json:"started_at"`
		LastActive time.Time `json:"last_active"`
	}

	// CompletedWizardInfo tracks wizards awaiting archival
	CompletedWizardInfo struct {
		ID          WizardID  `json:"id"`
		CompletedAt time.Time `json:"completed_at"`
	}
)

const (
	WizardActive    WizardStatus = "active"
	WizardCompleted WizardStatus = "completed"
	WizardArchived  WizardStatus = "archived"
)

// SetStatus returns a new WizardState with the updated status
func (st *WizardState) SetStatus(s WizardStatus) *WizardState {
	res := *st
	res.Status = s
	return &res
}

// SetCurrentStep returns a new WizardState with the current step set
func (st *WizardState) SetCurrentStep(id StepID) *WizardState {
	res := *st
	res.CurrentStep = id
	return &res
}

// MergeFieldValues returns a new WizardState with the given values merged
// over the existing ones. Existing keys are overwritten
func (st *WizardState) MergeFieldValues(values FieldValues) *WizardState {
	res := *st
	res.FieldValues = maps.Clone(st.FieldValues)
	if res.FieldValues == nil {
		res.FieldValues = FieldValues{}
	}
	maps.Copy(res.FieldValues, values)
	return &res
}

// SetStepCompleted returns a new WizardState with the step recorded as
// completed at the given time
func (st *WizardState) SetStepCompleted(
	id StepID, t time.Time,
) *WizardState {
	res := *st
	res.CompletedSteps = maps.Clone(st.CompletedSteps)
	if res.CompletedSteps == nil {
		res.CompletedSteps = CompletedSteps{}
	}
	res.CompletedSteps[id] = t
	return &res
}

// SetCompletedAt returns a new WizardState with the completion time set
func (st *WizardState) SetCompletedAt(t time.Time) *WizardState {
	res := *st
	res.CompletedAt = t
	return &res
}

// SetLastUpdated returns a new WizardState with last updated time set
func (st *WizardState) SetLastUpdated(t time.Time) *WizardState {
	res := *st
	res.LastUpdated = t
	return &res
}

// IsStepCompleted returns true if the given step has been completed
func (st *WizardState) IsStepCompleted(id StepID) bool {
	_, ok := st.CompletedSteps[id]
	return ok
}

// CompletedStepIDs returns the completed step IDs in ascending order
func (st *WizardState) CompletedStepIDs() []StepID {
	ids := slices.Collect(maps.Keys(st.CompletedSteps))
	slices.Sort(ids)
	return ids
}

// IsTerminal returns true once the wizard has completed or been archived
func (st *WizardState) IsTerminal() bool {
	return st.Status == WizardCompleted || st.Status == WizardArchived
}

// SetActiveWizard returns a new EngineState with the wizard marked active
func (st *EngineState) SetActiveWizard(
	id WizardID, info *ActiveWizardInfo,
) *EngineState {
	res := *st
	res.Active = maps.Clone(st.Active)
	res.Active[id] = info
	return &res
}

// DeleteActiveWizard returns a new EngineState with the wizard inactive
func (st *EngineState) DeleteActiveWizard(id WizardID) *EngineState {
	res := *st
	res.Active = maps.Clone(st.Active)
	delete(res.Active, id)
	return &res
}

// SetCompletedWizard returns a new EngineState with the wizard recorded as
// completed and awaiting archival
func (st *EngineState) SetCompletedWizard(
	id WizardID, info *CompletedWizardInfo,
) *EngineState {
	res := *st
	res.Completed = maps.Clone(st.Completed)
	res.Completed[id] = info
	return &res
}

// DeleteCompletedWizard returns a new EngineState with the wizard removed
// from the completed list
func (st *EngineState) DeleteCompletedWizard(id WizardID) *EngineState {
	res := *st
	res.Completed = maps.Clone(st.Completed)
	delete(res.Completed, id)
	return &res
}

// SetLastUpdated returns a new EngineState with the last updated time set
func (st *EngineState) SetLastUpdated(t time.Time) *EngineState {
	res := *st
	res.LastUpdated = t
	return &res
}
