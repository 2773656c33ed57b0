package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agentflow/onboard/internal/engine"
	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/wizard"
)

var (
	ErrInvalidStepID  = errors.New("invalid step ID")
	ErrInvalidPayload = errors.New("invalid request payload")
)

func (s *Server) listWizards(c *gin.Context) {
	digests, err := s.engine.ListWizards(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.WizardsListResponse{
		Wizards: digests,
		Count:   len(digests),
	})
}

func (s *Server) getWizard(c *gin.Context) {
	wizardID := api.WizardID(c.Param("wizardID"))

	st, err := s.engine.GetWizardState(c.Request.Context(), wizardID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

func (s *Server) saveStepData(c *gin.Context) {
	wizardID := api.WizardID(c.Param("wizardID"))
	stepID, ok := s.parseStepID(c)
	if !ok {
		return
	}

	var req api.SaveStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  ErrInvalidPayload.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}

	err := s.engine.SaveStepData(
		c.Request.Context(), wizardID, stepID, req.Values,
	)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "step data saved"})
}

func (s *Server) completeStep(c *gin.Context) {
	wizardID := api.WizardID(c.Param("wizardID"))
	stepID, ok := s.parseStepID(c)
	if !ok {
		return
	}

	err := s.engine.CompleteStep(c.Request.Context(), wizardID, stepID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "step completed"})
}

func (s *Server) completeWizard(c *gin.Context) {
	wizardID := api.WizardID(c.Param("wizardID"))

	err := s.engine.CompleteWizard(c.Request.Context(), wizardID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "wizard completed"})
}

func (s *Server) parseStepID(c *gin.Context) (api.StepID, bool) {
	raw := c.Param("stepID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  ErrInvalidStepID.Error(),
			Status: http.StatusBadRequest,
		})
		return 0, false
	}
	return api.StepID(id), true
}

func (s *Server) writeError(c *gin.Context, err error) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:   ve.Error(),
			Status:  http.StatusUnprocessableEntity,
			Missing: ve.Missing,
		})

	case errors.Is(err, wizard.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusUnprocessableEntity,
		})

	case errors.Is(err, engine.ErrWizardNotFound),
		errors.Is(err, wizard.ErrStepNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})

	case errors.Is(err, engine.ErrWizardFinished):
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusConflict,
		})

	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
	}
}
