package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflow/onboard/internal/assert/helpers"
	"github.com/agentflow/onboard/internal/server"
	"github.com/agentflow/onboard/pkg/api"
)

func withTestServer(
	t *testing.T, fn func(*helpers.TestEngineEnv, *httptest.Server),
) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		srv := server.NewServer(env.Engine, env.EventHub)
		ts := httptest.NewServer(srv.SetupRoutes())
		defer ts.Close()
		defer srv.CloseWebSockets()
		fn(env, ts)
	})
}

func postJSON(
	t *testing.T, url string, payload any,
) (*http.Response, []byte) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	resp, err := http.Post(url, "application/json", &body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	withTestServer(t, func(_ *helpers.TestEngineEnv, ts *httptest.Server) {
		var health api.HealthResponse
		resp := getJSON(t, ts.URL+"/health", &health)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "onboard", health.Service)
		assert.Equal(t, "healthy", health.Status)
	})
}

func TestListSteps(t *testing.T) {
	withTestServer(t, func(_ *helpers.TestEngineEnv, ts *httptest.Server) {
		var steps api.StepsListResponse
		resp := getJSON(t, ts.URL+"/steps", &steps)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 3, steps.Count)
		assert.Equal(t, api.StepID(1), steps.Steps[0].ID)
		assert.Equal(t, "Account", steps.Steps[0].Title)
	})
}

func TestGetStep(t *testing.T) {
	withTestServer(t, func(_ *helpers.TestEngineEnv, ts *httptest.Server) {
		var step api.StepDefinition
		resp := getJSON(t, ts.URL+"/steps/2", &step)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Workspace", step.Title)

		resp = getJSON(t, ts.URL+"/steps/99", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = getJSON(t, ts.URL+"/steps/zero", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestWizardLifecycle(t *testing.T) {
	withTestServer(t, func(_ *helpers.TestEngineEnv, ts *httptest.Server) {
		// unknown wizards are 404 until their first save
		resp := getJSON(t, ts.URL+"/wizard/wiz-1", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/1",
			api.SaveStepRequest{Values: api.FieldValues{
				"full_name": "Ada Lovelace",
			}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// completion is blocked on the missing email
		resp, body := postJSON(t, ts.URL+"/wizard/wiz-1/step/1/complete", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var errResp api.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &errResp))
		assert.Equal(t, []api.Name{"email"}, errResp.Missing)

		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/1",
			api.SaveStepRequest{Values: api.FieldValues{
				"email": "ada@example.com",
			}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/1/complete", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var st api.WizardState
		resp = getJSON(t, ts.URL+"/wizard/wiz-1", &st)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, api.StepID(2), st.CurrentStep)
		assert.True(t, st.IsStepCompleted(1))

		// finish the remaining steps
		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/2",
			api.SaveStepRequest{Values: api.FieldValues{
				"workspace_name": "lovelace-labs",
			}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/2/complete", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/3/complete", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/complete", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// writes to a finished wizard conflict
		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/1",
			api.SaveStepRequest{Values: api.FieldValues{
				"full_name": "Grace",
			}})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestSaveStepBadRequests(t *testing.T) {
	withTestServer(t, func(_ *helpers.TestEngineEnv, ts *httptest.Server) {
		// malformed step ID
		resp, _ := postJSON(t, ts.URL+"/wizard/wiz-1/step/first",
			api.SaveStepRequest{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		// unknown step
		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/99",
			api.SaveStepRequest{})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		// malformed body
		httpResp, err := http.Post(
			ts.URL+"/wizard/wiz-1/step/1", "application/json",
			bytes.NewBufferString("{nope"),
		)
		require.NoError(t, err)
		_ = httpResp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, httpResp.StatusCode)

		// typed field mismatch
		resp, _ = postJSON(t, ts.URL+"/wizard/wiz-1/step/1",
			api.SaveStepRequest{Values: api.FieldValues{
				"full_name": 42,
			}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestCompleteUnknownWizard(t *testing.T) {
	withTestServer(t, func(_ *helpers.TestEngineEnv, ts *httptest.Server) {
		resp, _ := postJSON(t, ts.URL+"/wizard/ghost/complete", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListWizards(t *testing.T) {
	withTestServer(t, func(_ *helpers.TestEngineEnv, ts *httptest.Server) {
		resp, _ := postJSON(t, ts.URL+"/wizard/wiz-1/step/1",
			api.SaveStepRequest{Values: api.FieldValues{
				"full_name": "Ada Lovelace",
			}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var list api.WizardsListResponse
		resp = getJSON(t, ts.URL+"/wizard", &list)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
