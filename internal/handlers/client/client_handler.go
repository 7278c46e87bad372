// internal/handlers/client/client_handler.go
package client

import (
	"net/http"

	"killbill-service/internal/domain/client"
	"killbill-service/internal/middleware"
	"killbill-service/internal/pkg/response"
	service "killbill-service/internal/service/client"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService *service.ClientService
}

func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClient creates a new client
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req client.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.clientService.CreateClient(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create client", err)
		return
	}

	response.Success(c, http.StatusCreated, "client created", result)
}

// UpdateClient updates a client
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	var req client.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.clientService.UpdateClient(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update client", err)
		return
	}

	response.Success(c, http.StatusOK, "client updated", result)
}

// GetClient retrieves a client with its subscriptions
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "client not found", err)
		return
	}

	response.Success(c, http.StatusOK, "client retrieved", result)
}

// ListClients lists clients, optionally searching by company name
func (h *ClientHandler) ListClients(c *gin.Context) {
	var filters client.ClientListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list clients", err)
		return
	}

	response.Success(c, http.StatusOK, "clients retrieved", result)
}
