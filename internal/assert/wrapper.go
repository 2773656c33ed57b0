package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentflow/onboard/internal/config"
	"github.com/agentflow/onboard/pkg/api"
)

// Wrapper wraps testify assertions with wizard-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 100 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus wizard-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// StepValid asserts that a step definition is valid
func (w *Wrapper) StepValid(s *api.StepDefinition) {
	w.Helper()
	w.NoError(s.Validate())
	w.True(s.ID >= 1)
	w.NotEmpty(s.Title)
}

// StepInvalid asserts that a step definition is invalid and returns the
// validation error
func (w *Wrapper) StepInvalid(
	s *api.StepDefinition, expectedErrorContains string,
) error {
	w.Helper()
	err := s.Validate()
	w.Error(err)
	if err != nil && expectedErrorContains != "" {
		w.Contains(err.Error(), expectedErrorContains)
	}
	return err
}

// WizardStatus asserts the status of a wizard
func (w *Wrapper) WizardStatus(
	st *api.WizardState, expected api.WizardStatus,
) {
	w.Helper()
	w.Equal(expected, st.Status)
}

// StepsCompleted asserts that all the given steps have been completed
func (w *Wrapper) StepsCompleted(st *api.WizardState, ids ...api.StepID) {
	w.Helper()
	for _, id := range ids {
		w.True(st.IsStepCompleted(id),
			"wizard should have completed step %d", id)
	}
}

// FieldEquals asserts that a wizard field has the expected value
func (w *Wrapper) FieldEquals(
	st *api.WizardState, name api.Name, expected any,
) {
	w.Helper()
	val, ok := st.FieldValues[name]
	w.True(ok, "wizard should have field: %s", name)
	w.Equal(expected, val)
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= 65535)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}
