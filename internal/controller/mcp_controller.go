package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"order-support-mcp/internal/mcp"
)

// MCPController monta los transportes HTTP de mcp-go y el atajo REST de herramientas.
type MCPController struct {
	srv *mcp.Server
	log *slog.Logger

	streamable http.Handler
	sse        http.Handler
	messages   http.Handler
}

func NewMCPController(srv *mcp.Server, log *slog.Logger) *MCPController {
	sse := srv.SSEServer()
	return &MCPController{
		srv:        srv,
		log:        log,
		streamable: srv.StreamableHandler(),
		sse:        sse.SSEHandler(),
		messages:   sse.MessageHandler(),
	}
}

// Register agrega las rutas MCP al engine.
func (m *MCPController) Register(r gin.IRoutes) {
	streamable := gin.WrapH(m.streamable)
	r.POST(mcp.StreamablePath, streamable)
	r.GET(mcp.StreamablePath, streamable)
	r.DELETE(mcp.StreamablePath, streamable)

	r.GET(mcp.SSEPath, gin.WrapH(m.sse))
	r.POST(mcp.MessagePath, gin.WrapH(m.messages))
}

// GET /api/tools
func (m *MCPController) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": m.srv.Registry().List()})
}

// POST /api/tools/:name - atajo REST para la UI de chat
func (m *MCPController) CallTool(c *gin.Context) {
	var args map[string]any
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := mcp.WithTransport(c.Request.Context(), "rest")
	res, err := m.srv.Registry().Call(ctx, c.Param("name"), args)
	switch {
	case errors.Is(err, mcp.ErrUnknownTool):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, mcp.ErrInvalidArguments):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		m.log.ErrorContext(ctx, "tool call failed", "tool", c.Param("name"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, res)
	}
}
