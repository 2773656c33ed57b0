// Package client provides the HTTP implementation of the wizard
// persistence gateway
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/wizard"
)

// HTTPGateway persists wizard state through the engine's REST API. One
// gateway is bound to one wizard instance
type HTTPGateway struct {
	httpClient *http.Client
	baseURL    string
	wizardID   api.WizardID
}

var (
	ErrHTTPError      = errors.New("engine returned HTTP error")
	ErrWizardIDEmpty  = errors.New("wizard ID empty")
	ErrBaseURLEmpty   = errors.New("base URL empty")
	ErrInvalidPayload = errors.New("invalid response payload")
)

var _ wizard.Gateway = (*HTTPGateway)(nil)

// NewWizardID generates a fresh wizard instance identifier
func NewWizardID() api.WizardID {
	return api.WizardID(uuid.NewString())
}

// NewHTTPGateway creates a gateway for the given wizard instance. The
// timeout applies per call; retry policy belongs to the caller
func NewHTTPGateway(
	baseURL string, wizardID api.WizardID, timeout time.Duration,
) (*HTTPGateway, error) {
	if baseURL == "" {
		return nil, ErrBaseURLEmpty
	}
	wizardID = api.SanitizeID(wizardID)
	if wizardID == "" {
		return nil, ErrWizardIDEmpty
	}
	return &HTTPGateway{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		wizardID:   wizardID,
	}, nil
}

// WizardID returns the wizard instance this gateway is bound to
func (g *HTTPGateway) WizardID() api.WizardID {
	return g.wizardID
}

func (g *HTTPGateway) SaveStepData(
	ctx context.Context, stepID api.StepID, values api.FieldValues,
) error {
	url := fmt.Sprintf("%s/wizard/%s/step/%d", g.baseURL, g.wizardID, stepID)
	body, err := json.Marshal(api.SaveStepRequest{Values: values})
	if err != nil {
		return err
	}
	_, err = g.post(ctx, url, body)
	return err
}

func (g *HTTPGateway) CompleteStep(
	ctx context.Context, stepID api.StepID,
) error {
	url := fmt.Sprintf("%s/wizard/%s/step/%d/complete",
		g.baseURL, g.wizardID, stepID)
	_, err := g.post(ctx, url, nil)
	return err
}

func (g *HTTPGateway) CompleteWizard(ctx context.Context) error {
	url := fmt.Sprintf("%s/wizard/%s/complete", g.baseURL, g.wizardID)
	_, err := g.post(ctx, url, nil)
	return err
}

func (g *HTTPGateway) LoadState(
	ctx context.Context,
) (*api.WizardState, bool, error) {
	url := fmt.Sprintf("%s/wizard/%s", g.baseURL, g.wizardID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, false, httpError(resp.StatusCode, respBody)
	}

	var state api.WizardState
	if err := json.Unmarshal(respBody, &state); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return &state, true, nil
}

func (g *HTTPGateway) post(
	ctx context.Context, url string, body []byte,
) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, reader,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// httpError maps an error status to the taxonomy the session controller
// surfaces. Validation failures keep their missing-field detail
func httpError(status int, body []byte) error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil &&
		errResp.Error != "" {
		if status == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: %s missing %v",
				wizard.ErrValidation, errResp.Error, errResp.Missing)
		}
		if status == http.StatusConflict {
			return fmt.Errorf("%w: %s", wizard.ErrInvalidState,
				errResp.Error)
		}
		return fmt.Errorf("%w: HTTP %d: %s",
			ErrHTTPError, status, errResp.Error)
	}
	return fmt.Errorf("%w: HTTP %d", ErrHTTPError, status)
}
