package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contractdesk/negotiation/internal/application/service"
	"github.com/contractdesk/negotiation/internal/domain/entity"
	"github.com/contractdesk/negotiation/internal/domain/guard"
	"github.com/contractdesk/negotiation/internal/domain/workflow"
	"github.com/contractdesk/negotiation/pkg/utils"
)

// actorHeader carries the authenticated caller's identity. Authentication
// itself happens upstream; this service trusts the header.
const actorHeader = "X-Actor-ID"

// Handlers contains all HTTP request handlers
type Handlers struct {
	negotiationService service.NegotiationService
	contractService    service.ContractService
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	negotiationService service.NegotiationService,
	contractService service.ContractService,
	logger Logger,
) *Handlers {
	return &Handlers{
		negotiationService: negotiationService,
		contractService:    contractService,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CreateContractRequest represents the contract creation payload
type CreateContractRequest struct {
	RequesterID  string     `json:"requester_id" binding:"required"`
	ProviderID   string     `json:"provider_id" binding:"required"`
	TotalValue   float64    `json:"total_value"`
	ServiceStart *time.Time `json:"service_start,omitempty"`
	ServiceEnd   *time.Time `json:"service_end,omitempty"`
}

// CreateNegotiationRequest represents the negotiation creation payload
type CreateNegotiationRequest struct {
	ContractID string     `json:"contract_id" binding:"required"`
	Price      *float64   `json:"price,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	Notes      string     `json:"notes" binding:"required"`
}

// AddEntryRequest represents the entry payload
type AddEntryRequest struct {
	Type     string     `json:"type" binding:"required"`
	Price    *float64   `json:"price,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Notes    string     `json:"notes" binding:"required"`
}

// FinalizeRequest represents the finalize payload
type FinalizeRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// NegotiationResponse represents a negotiation in API responses
type NegotiationResponse struct {
	ID          string             `json:"id"`
	ContractID  string             `json:"contract_id"`
	RequesterID string             `json:"requester_id"`
	ProviderID  string             `json:"provider_id"`
	Status      string             `json:"status"`
	FinalTerms  *entity.FinalTerms `json:"final_terms,omitempty"`
	Version     int64              `json:"version"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	History     []EntryResponse    `json:"history,omitempty"`
}

// EntryResponse represents a history entry in API responses
type EntryResponse struct {
	ID        int64      `json:"id"`
	ActorID   string     `json:"actor_id"`
	Type      string     `json:"type"`
	Price     *float64   `json:"price,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Notes     string     `json:"notes"`
	CreatedAt string     `json:"created_at"`
}

// ListNegotiationsRequest represents query parameters for listing negotiations
type ListNegotiationsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateContract handles POST /api/v1/contracts
func (h *Handlers) CreateContract(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), service.CreateContractInput{
		RequesterID:  req.RequesterID,
		ProviderID:   req.ProviderID,
		TotalValue:   req.TotalValue,
		ServiceStart: req.ServiceStart,
		ServiceEnd:   req.ServiceEnd,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: contract})
}

// GetContract handles GET /api/v1/contracts/:id
func (h *Handlers) GetContract(c *gin.Context) {
	contract, err := h.contractService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: contract})
}

// CreateNegotiation handles POST /api/v1/negotiations
func (h *Handlers) CreateNegotiation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	n, err := h.negotiationService.Create(c.Request.Context(), actor, service.CreateNegotiationInput{
		ContractID: req.ContractID,
		Price:      req.Price,
		Deadline:   req.Deadline,
		Notes:      utils.SanitizeString(req.Notes),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toNegotiationResponse(n, nil)})
}

// ListNegotiations handles GET /api/v1/negotiations
func (h *Handlers) ListNegotiations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req ListNegotiationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	negotiations, err := h.negotiationService.ListByParticipant(c.Request.Context(), actor.ID, req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]NegotiationResponse, 0, len(negotiations))
	for _, n := range negotiations {
		responses = append(responses, toNegotiationResponse(n, nil))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetNegotiation handles GET /api/v1/negotiations/:id
func (h *Handlers) GetNegotiation(c *gin.Context) {
	n, entries, err := h.negotiationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toNegotiationResponse(n, entries)})
}

// GetHistory handles GET /api/v1/negotiations/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	entries, err := h.negotiationService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toEntryResponse(e))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// AddEntry handles POST /api/v1/negotiations/:id/entries
func (h *Handlers) AddEntry(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	entry, err := h.negotiationService.AddEntry(c.Request.Context(), actor, c.Param("id"), service.EntryInput{
		Type:     entity.EntryType(req.Type),
		Price:    req.Price,
		Deadline: req.Deadline,
		Notes:    utils.SanitizeString(req.Notes),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toEntryResponse(entry)})
}

// Finalize handles POST /api/v1/negotiations/:id/finalize
func (h *Handlers) Finalize(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	n, err := h.negotiationService.Finalize(c.Request.Context(), actor, c.Param("id"), service.Decision(req.Decision))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toNegotiationResponse(n, nil)})
}

// Cancel handles POST /api/v1/negotiations/:id/cancel
func (h *Handlers) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	n, err := h.negotiationService.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toNegotiationResponse(n, nil)})
}

// actor extracts the caller identity from the request headers. Writes the
// error response and returns false when the header is missing.
func (h *Handlers) actor(c *gin.Context) (entity.ActorContext, bool) {
	id := c.GetHeader(actorHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "missing " + actorHeader + " header"})
		return entity.ActorContext{}, false
	}
	if err := utils.ValidateActorID(id); err != nil {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
		return entity.ActorContext{}, false
	}
	return entity.ActorContext{ID: id}, true
}

// respondError maps domain errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case entity.IsValidation(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, guard.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrInvalidState),
		errors.Is(err, entity.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// toNegotiationResponse converts a domain entity to the API representation
func toNegotiationResponse(n *entity.Negotiation, entries []*entity.Entry) NegotiationResponse {
	resp := NegotiationResponse{
		ID:          n.ID,
		ContractID:  n.ContractID,
		RequesterID: n.RequesterID,
		ProviderID:  n.ProviderID,
		Status:      n.Status.String(),
		FinalTerms:  n.FinalTerms,
		Version:     n.Version,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   n.UpdatedAt.Format(time.RFC3339),
	}

	for _, e := range entries {
		resp.History = append(resp.History, toEntryResponse(e))
	}

	return resp
}

// toEntryResponse converts a history entry to the API representation
func toEntryResponse(e *entity.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		ActorID:   e.ActorID,
		Type:      e.Type.String(),
		Price:     e.Price,
		Deadline:  e.Deadline,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
