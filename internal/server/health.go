package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentflow/onboard"
	"github.com/agentflow/onboard/pkg/api"
)

func (s *Server) handleHealth(c *gin.Context) {
	engState, err := s.engine.GetEngineState(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, api.HealthResponse{
			Service: onboard.Name,
			Version: onboard.Version,
			Status:  "unhealthy",
		})
		return
	}

	c.JSON(http.StatusOK, api.HealthResponse{
		Service:       onboard.Name,
		Version:       onboard.Version,
		Status:        "healthy",
		ActiveWizards: len(engState.Active),
	})
}
