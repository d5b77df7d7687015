package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcredit "github.com/lending/backend/internal/application/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/interfaces/http/middleware"
)

// CreditLifecycle is the slice of the credit service the handler drives
type CreditLifecycle interface {
	CreateCredit(ctx context.Context, req appcredit.CreateCreditRequest) (*appcredit.CreditResponse, error)
	GetCredit(ctx context.Context, id uuid.UUID) (*appcredit.CreditDetailResponse, error)
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]appcredit.CreditResponse, error)
	UpdateCredit(ctx context.Context, id uuid.UUID, req appcredit.UpdateCreditRequest) (*appcredit.CreditResponse, error)
	VoidCredit(ctx context.Context, id uuid.UUID) (*appcredit.CreditResponse, error)
	DeleteCredit(ctx context.Context, id uuid.UUID) error
}

// Settler settles a credit early
type Settler interface {
	Settle(ctx context.Context, identity shared.Identity, creditID uuid.UUID, req appcredit.SettleRequest) (*appcredit.SettleResponse, error)
}

// Refinancer rolls a live credit into a new one
type Refinancer interface {
	Refinance(ctx context.Context, identity shared.Identity, creditID uuid.UUID, req appcredit.RefinanceRequest) (*appcredit.RefinanceResponse, error)
}

// CreditHandler handles credit lifecycle API endpoints
type CreditHandler struct {
	BaseHandler
	credits    CreditLifecycle
	settler    Settler
	refinancer Refinancer
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(credits CreditLifecycle, settler Settler, refinancer Refinancer) *CreditHandler {
	return &CreditHandler{
		credits:    credits,
		settler:    settler,
		refinancer: refinancer,
	}
}

// RegisterRoutes registers credit routes on the given router group
func (h *CreditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credits := rg.Group("/credits")
	{
		credits.POST("", h.Create)
		credits.GET("/:id", h.Get)
		credits.PUT("/:id", h.Update)
		credits.DELETE("/:id", h.Delete)
		credits.POST("/:id/void", h.Void)
		credits.POST("/:id/settle", h.Settle)
		credits.POST("/:id/refinance", h.Refinance)
	}
	rg.GET("/borrowers/:id/credits", h.ListByBorrower)
}

// Create originates a credit
func (h *CreditHandler) Create(c *gin.Context) {
	var req appcredit.CreateCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.OperatorID = operatorID(c)

	resp, err := h.credits.CreateCredit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a credit snapshot with accrual brought up to today
func (h *CreditHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit ID")
		return
	}

	resp, err := h.credits.GetCredit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByBorrower returns a borrower's credits, newest first
func (h *CreditHandler) ListByBorrower(c *gin.Context) {
	borrowerID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid borrower ID")
		return
	}

	resp, err := h.credits.ListByBorrower(c.Request.Context(), borrowerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update reprices a credit; term changes are rejected once payments exist
func (h *CreditHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit ID")
		return
	}

	var req appcredit.UpdateCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.OperatorID = operatorID(c)

	resp, err := h.credits.UpdateCredit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a credit with no payment history
func (h *CreditHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit ID")
		return
	}

	if err := h.credits.DeleteCredit(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Void terminally voids a credit with no payment history and returns the
// voided snapshot
func (h *CreditHandler) Void(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit ID")
		return
	}

	resp, err := h.credits.VoidCredit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Settle pays off a credit early
func (h *CreditHandler) Settle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit ID")
		return
	}

	var req appcredit.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.settler.Settle(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refinance rolls a credit's exposure into a new fixed credit
func (h *CreditHandler) Refinance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit ID")
		return
	}

	var req appcredit.RefinanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.refinancer.Refinance(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// operatorID resolves the acting user for audit fields on write requests
func operatorID(c *gin.Context) *uuid.UUID {
	identity := middleware.GetIdentity(c)
	if identity.UserID == uuid.Nil {
		return nil
	}
	id := identity.UserID
	return &id
}
