package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

type (
	// FieldSpec describes a single field collected by a step
	FieldSpec struct {
		Role  FieldRole `json:"role"`
		Type  FieldType `json:"type,omitempty"`
		Title string    `json:"title,omitempty"`
	}

	// FieldSpecs maps field names to their specifications
	FieldSpecs map[Name]*FieldSpec

	FieldRole string
	FieldType string
)

const (
	RoleRequired FieldRole = "required"
	RoleOptional FieldRole = "optional"
)

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
	TypeAny     FieldType = "any"
)

var (
	ErrInvalidFieldRole  = errors.New("invalid field role")
	ErrInvalidFieldType  = errors.New("invalid field type")
	ErrFieldTypeMismatch = errors.New(
		"field value does not match declared type",
	)
)

var (
	validFieldRoles = map[FieldRole]struct{}{
		RoleRequired: {},
		RoleOptional: {},
	}

	validFieldTypes = map[FieldType]struct{}{
		TypeString:  {},
		TypeNumber:  {},
		TypeBoolean: {},
		TypeObject:  {},
		TypeArray:   {},
		TypeAny:     {},
	}
)

func (fs *FieldSpec) Validate(name Name) error {
	if _, ok := validFieldRoles[fs.Role]; !ok {
		return fmt.Errorf("%w: %s for field %q",
			ErrInvalidFieldRole, fs.Role, name)
	}
	if fs.Type != "" {
		if _, ok := validFieldTypes[fs.Type]; !ok {
			return fmt.Errorf("%w: %s for field %q",
				ErrInvalidFieldType, fs.Type, name)
		}
	}
	return nil
}

// IsRequired returns true if the field must be populated before its step
// can be completed
func (fs *FieldSpec) IsRequired() bool {
	return fs.Role == RoleRequired
}

// CheckValue validates a field value against the spec's declared type. The
// value is round-tripped through JSON so the check matches what the wire
// carries
func (fs *FieldSpec) CheckValue(name Name, value any) error {
	if fs.Type == "" || fs.Type == TypeAny {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	result := gjson.ParseBytes(data)
	ok := false
	switch fs.Type {
	case TypeString:
		ok = result.Type == gjson.String
	case TypeNumber:
		ok = result.Type == gjson.Number
	case TypeBoolean:
		ok = result.Type == gjson.True || result.Type == gjson.False
	case TypeObject:
		ok = result.IsObject()
	case TypeArray:
		ok = result.IsArray()
	}
	if !ok {
		return fmt.Errorf("%w: %s expected for field %q",
			ErrFieldTypeMismatch, fs.Type, name)
	}
	return nil
}

// IsEmptyValue reports whether a field value counts as unset for the
// purposes of required-field checks. Empty strings, nil, and zero-length
// collections are all treated as missing
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
