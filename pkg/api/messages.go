package api

import (
	"encoding/json"
	"time"
)

type (
	// SaveStepRequest carries in-progress field values for one step
	SaveStepRequest struct {
		Values FieldValues `json:"values"`
	}

	// WizardDigest provides summary information about a wizard instance
	WizardDigest struct {
		ID          WizardID     `json:"id"`
		Status      WizardStatus `json:"status"`
		CurrentStep StepID       `json:"current_step"`
		StartedAt   time.Time    `json:"started_at"`
		CompletedAt time.Time    `json:"completed_at,omitempty"`
	}

	// WizardsListResponse contains a list of wizard summaries
	WizardsListResponse struct {
		Wizards []*WizardDigest `json:"wizards"`
		Count   int             `json:"count"`
	}

	// StepsListResponse contains the registry's step definitions in order
	StepsListResponse struct {
		Steps []*StepDefinition `json:"steps"`
		Count int               `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service       string `json:"service"`
		Version       string `json:"version"`
		Status        string `json:"status"`
		ActiveWizards int    `json:"active_wizards"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests. Missing
	// lists the required fields a validation failure is waiting on
	ErrorResponse struct {
		Error   string `json:"error"`
		Status  int    `json:"status,omitempty"`
		Missing []Name `json:"missing,omitempty"`
	}

	// SubscribeRequest is sent by WebSocket clients to select events
	SubscribeRequest struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}

	// ClientSubscription filters the event stream by wizard and event type
	ClientSubscription struct {
		WizardID   WizardID    `json:"wizard_id,omitempty"`
		EventTypes []EventType `json:"event_types,omitempty"`
	}

	// SubscribedResult acknowledges a subscription with the current state
	// and the next event sequence the client should expect
	SubscribedResult struct {
		Type     string          `json:"type"`
		WizardID WizardID        `json:"wizard_id,omitempty"`
		Data     json.RawMessage `json:"data"`
		Sequence int64           `json:"sequence"`
	}

	// WebSocketEvent is the wire form of a streamed engine event
	WebSocketEvent struct {
		Type        EventType       `json:"type"`
		Data        json.RawMessage `json:"data"`
		AggregateID []string        `json:"aggregate_id"`
		Timestamp   int64           `json:"timestamp"`
		Sequence    int64           `json:"sequence"`
	}
)
