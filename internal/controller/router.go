package controller

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"order-support-mcp/internal/mcp"
	"order-support-mcp/internal/middleware"
	"order-support-mcp/internal/service"
)

type RouterDeps struct {
	Name       string
	Support    *service.SupportService
	MCP        *mcp.Server
	Receipts   ReceiptReader
	Stats      StatsProvider
	AdminToken string
	Limiter    *middleware.RateLimiter
	Log        *slog.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(d.Log))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}
	r.SetHTMLTemplate(homeTemplate)

	support := NewSupportController(d.Support, d.Receipts)
	mcpCtl := NewMCPController(d.MCP, d.Log)
	pages := NewPagesController(d.Name, d.MCP, d.Stats)

	// Páginas
	r.GET("/", pages.Home)
	r.GET("/healthz", pages.Health)

	// MCP: streamable HTTP y SSE
	mcpCtl.Register(r)

	// REST para la UI de chat
	api := r.Group("/api")
	api.GET("/orders/:orderId/status", support.GetOrderStatus)
	api.POST("/orders/:orderId/cancel", support.CancelOrder)
	api.POST("/orders/:orderId/returns", support.ProcessReturn)
	api.GET("/orders/:orderId/tracking", support.TrackPackage)
	api.GET("/support", support.GetSupportInfo)
	api.GET("/tools", mcpCtl.ListTools)
	api.POST("/tools/:name", mcpCtl.CallTool)

	// Rutas admin
	admin := r.Group("/admin")
	admin.Use(middleware.AdminOnly(d.AdminToken))
	admin.GET("/orders", support.SearchOrders)
	admin.GET("/customers/:customerId/orders", support.GetCustomerOrders)
	admin.PATCH("/orders/:orderId/status", support.UpdateStatus)
	admin.GET("/tool-calls", support.GetToolCalls)

	return r
}
