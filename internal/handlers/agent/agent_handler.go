// internal/handlers/agent/agent_handler.go
package agent

import (
	"errors"
	"net/http"
	"strconv"

	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/middleware"
	"leaddist-service/internal/pkg/response"
	agentUsecase "leaddist-service/internal/service/agent"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AgentHandler struct {
	agentService *agentUsecase.AgentService
	logger       *zap.Logger
}

func NewAgentHandler(agentService *agentUsecase.AgentService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		logger:       logger,
	}
}

// Create registers a new agent
func (h *AgentHandler) Create(c *gin.Context) {
	var req agent.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	adminID := middleware.MustGetAdminID(c)
	a, err := h.agentService.CreateAgent(c.Request.Context(), adminID, &req)
	if err != nil {
		response.FromError(c, "failed to create agent", err)
		return
	}

	response.Success(c, http.StatusCreated, "Agent created successfully", a)
}

// Get returns one agent
func (h *AgentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.agentService.GetAgent(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "Agent not found", err)
		return
	}

	response.Success(c, http.StatusOK, "agent retrieved", a)
}

// List returns a page of agents
func (h *AgentHandler) List(c *gin.Context) {
	var filters agent.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	res, err := h.agentService.ListAgents(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list agents", err)
		return
	}

	response.Success(c, http.StatusOK, "agents retrieved", res)
}

// Update applies a partial update
func (h *AgentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req agent.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	a, err := h.agentService.UpdateAgent(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update agent", err)
		return
	}

	response.Success(c, http.StatusOK, "Agent updated successfully", a)
}

// Delete deactivates an agent that owns no records
func (h *AgentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.agentService.DeleteAgent(c.Request.Context(), id); err != nil {
		var hre *agent.HasRecordsError
		if errors.As(err, &hre) {
			response.Error(c, http.StatusBadRequest, "agent still owns records", err)
			return
		}
		response.FromError(c, "failed to delete agent", err)
		return
	}

	response.Success(c, http.StatusOK, "Agent deleted successfully", nil)
}

// Count reports the active agent readiness signal
func (h *AgentHandler) Count(c *gin.Context) {
	count, err := h.agentService.GetActiveCount(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to count agents", err)
		return
	}

	response.Success(c, http.StatusOK, count.Message, count)
}

// Recount repairs drifted load counters
func (h *AgentHandler) Recount(c *gin.Context) {
	corrections, err := h.agentService.Recount(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to recount agents", err)
		return
	}
	if corrections == nil {
		corrections = []agent.CountCorrection{}
	}

	response.Success(c, http.StatusOK, "agent counters reconciled", gin.H{"corrections": corrections})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+param, err)
		return 0, false
	}
	return id, true
}
