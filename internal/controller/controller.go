package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"order-support-mcp/internal/dto"
	"order-support-mcp/internal/model"
	"order-support-mcp/internal/service"
)

// ReceiptReader lo implementan los repositorios de auditoría.
type ReceiptReader interface {
	FindRecent(ctx context.Context, limit int64) ([]*model.ToolCallReceipt, error)
	FindByTool(ctx context.Context, toolName string) ([]*model.ToolCallReceipt, error)
	FindBySession(ctx context.Context, sessionID string) ([]*model.ToolCallReceipt, error)
}

type SupportController struct {
	Service  *service.SupportService
	Receipts ReceiptReader
	validate *validator.Validate
}

func NewSupportController(s *service.SupportService, receipts ReceiptReader) *SupportController {
	return &SupportController{
		Service:  s,
		Receipts: receipts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func customerID(c *gin.Context) string {
	return c.DefaultQuery("customerId", "default")
}

// GET /api/orders/:orderId/status
func (ctl *SupportController) GetOrderStatus(c *gin.Context) {
	msg := ctl.Service.GetOrderStatus(c.Request.Context(), c.Param("orderId"), customerID(c))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

// POST /api/orders/:orderId/cancel - body opcional
func (ctl *SupportController) CancelOrder(c *gin.Context) {
	req := dto.CancelRequest{Reason: "Customer requested", CustomerID: "default"}
	if c.Request.ContentLength != 0 {
		if err := bindAndValidate(c, &req, ctl.validate); err != nil {
			return
		}
	}
	msg := ctl.Service.CancelOrder(c.Request.Context(), c.Param("orderId"), req.Reason, req.CustomerID)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

// POST /api/orders/:orderId/returns - sin itemIds se devuelve todo
func (ctl *SupportController) ProcessReturn(c *gin.Context) {
	req := dto.ReturnRequest{Reason: "Customer return", CustomerID: "default"}
	if c.Request.ContentLength != 0 {
		if err := bindAndValidate(c, &req, ctl.validate); err != nil {
			return
		}
	}
	msg := ctl.Service.ProcessReturn(c.Request.Context(), c.Param("orderId"), req.ItemIDs, req.Reason, req.CustomerID)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

// GET /api/orders/:orderId/tracking
func (ctl *SupportController) TrackPackage(c *gin.Context) {
	msg := ctl.Service.TrackPackage(c.Request.Context(), c.Param("orderId"), "order", customerID(c))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

// GET /api/support?topic=
func (ctl *SupportController) GetSupportInfo(c *gin.Context) {
	msg := ctl.Service.GetSupportInfo(c.Request.Context(), c.DefaultQuery("topic", "general"), customerID(c))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

// GET /admin/orders?q=&customerId=&status=&createdFrom= - admin only
func (ctl *SupportController) SearchOrders(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.CustomerID = c.Query("customerId")

	orders, err := ctl.Service.SearchOrders(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/customers/:customerId/orders - admin only
func (ctl *SupportController) GetCustomerOrders(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orders, err := ctl.Service.CustomerOrders(c.Request.Context(), c.Param("customerId"), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PATCH /admin/orders/:orderId/status - admin only
func (ctl *SupportController) UpdateStatus(c *gin.Context) {
	orderID := c.Param("orderId")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Service.UpdateStatus(c.Request.Context(), orderID, req.Status, req.Reason)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GET /admin/tool-calls?limit=&tool=&session= - admin only
func (ctl *SupportController) GetToolCalls(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		receipts []*model.ToolCallReceipt
		err      error
	)
	switch {
	case c.Query("session") != "":
		receipts, err = ctl.Receipts.FindBySession(ctx, c.Query("session"))
	case c.Query("tool") != "":
		receipts, err = ctl.Receipts.FindByTool(ctx, c.Query("tool"))
	default:
		limit, perr := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		if perr != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		receipts, err = ctl.Receipts.FindRecent(ctx, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, receipts)
}

func filterFromQuery(c *gin.Context) (model.OrderFilter, error) {
	f := model.OrderFilter{OrderIDContains: c.Query("q")}
	if s := c.Query("status"); s != "" {
		st, err := model.ParseOrderStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if from := c.Query("createdFrom"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return f, errors.New("createdFrom must be an RFC3339 timestamp")
		}
		f.CreatedFrom = t
	}
	return f, nil
}
