package api

import (
	"errors"
	"fmt"
	"slices"
)

type (
	// StepDefinition describes one page of a wizard: its position in the
	// sequence, a title for display, and the fields it collects
	StepDefinition struct {
		Fields FieldSpecs `json:"fields"`
		Title  string     `json:"title"`
		ID     StepID     `json:"id"`
	}
)

var (
	ErrStepIDInvalid  = errors.New("step ID must be positive")
	ErrStepTitleEmpty = errors.New("step title empty")
	ErrFieldNameEmpty = errors.New("field name empty")
	ErrFieldNil       = errors.New("field has nil definition")
)

func (s *StepDefinition) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("%w: %d", ErrStepIDInvalid, s.ID)
	}
	if s.Title == "" {
		return fmt.Errorf("%w: step %d", ErrStepTitleEmpty, s.ID)
	}
	return s.validateFields()
}

func (s *StepDefinition) validateFields() error {
	if s.Fields == nil {
		s.Fields = FieldSpecs{}
	}

	for name, field := range s.Fields {
		if name == "" {
			return fmt.Errorf("%w: step %d", ErrFieldNameEmpty, s.ID)
		}
		if field == nil {
			return fmt.Errorf("%w: field %q", ErrFieldNil, name)
		}
		if err := field.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// RequiredFields returns the sorted names of fields that must be populated
// before the step can be completed
func (s *StepDefinition) RequiredFields() []Name {
	var names []Name
	for name, field := range s.Fields {
		if field.IsRequired() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// MissingFields returns the sorted names of required fields that are unset
// or empty in the given values
func (s *StepDefinition) MissingFields(values map[Name]any) []Name {
	var missing []Name
	for name, field := range s.Fields {
		if !field.IsRequired() {
			continue
		}
		value, ok := values[name]
		if !ok || IsEmptyValue(value) {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

func (s *StepDefinition) Equal(other *StepDefinition) bool {
	if s.ID != other.ID || s.Title != other.Title {
		return false
	}
	return fieldMapsEqual(s.Fields, other.Fields)
}

func fieldMapsEqual(a, b FieldSpecs) bool {
	if len(a) != len(b) {
		return false
	}
	for name, fieldA := range a {
		fieldB, ok := b[name]
		if !ok || *fieldA != *fieldB {
			return false
		}
	}
	return true
}
