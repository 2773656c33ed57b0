package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentflow/onboard/pkg/api"
)

func (s *Server) listSteps(c *gin.Context) {
	steps := s.engine.Registry().Steps()

	c.JSON(http.StatusOK, api.StepsListResponse{
		Steps: steps,
		Count: len(steps),
	})
}

func (s *Server) getStep(c *gin.Context) {
	stepID, ok := s.parseStepID(c)
	if !ok {
		return
	}

	step, err := s.engine.Registry().Step(stepID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, step)
}
