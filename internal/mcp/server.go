package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"order-support-mcp/internal/logging"
)

// Rutas HTTP de los transportes MCP.
const (
	StreamablePath = "/mcp"
	SSEPath        = "/sse"
	MessagePath    = "/messages"
)

const serverInstructions = "Customer support tools for an online store. Use get_order_status, cancel_order, " +
	"process_return and track_package with an order id such as ORD-1001, and the get_* knowledge tools for policies."

// Server publica las herramientas del Registry sobre mcp-go. El protocolo (handshake,
// tools/list, framing) lo resuelve la librería; validación y auditoría siguen en el Registry.
type Server struct {
	reg *Registry
	mcp *server.MCPServer
	log *slog.Logger
}

// NewServer toma las herramientas ya registradas en reg.
func NewServer(reg *Registry, name, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{reg: reg, log: log}
	s.mcp = server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithInstructions(serverInstructions),
		server.WithRecovery(),
	)
	for _, ti := range reg.List() {
		s.mcp.AddTool(mcpgo.NewToolWithRawSchema(ti.Name, ti.Description, ti.InputSchema), s.toolHandler(ti.Name))
	}
	return s
}

func (s *Server) Registry() *Registry { return s.reg }

// toolHandler adapta Registry.Call a mcp-go. Los argumentos inválidos vuelven como
// resultado con isError para que el agente pueda corregirse.
func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		if cs := server.ClientSessionFromContext(ctx); cs != nil {
			ctx = logging.WithSessionID(ctx, cs.SessionID())
		}
		res, err := s.reg.Call(ctx, name, req.GetArguments())
		switch {
		case err == nil:
			return toCallToolResult(res), nil
		case errors.Is(err, ErrInvalidArguments):
			s.log.WarnContext(ctx, "tool call rejected", "tool", name, "error", err)
			return mcpgo.NewToolResultError(err.Error()), nil
		default:
			s.log.ErrorContext(ctx, "tool call failed", "tool", name, "error", err)
			return nil, err
		}
	}
}

func toCallToolResult(r Result) *mcpgo.CallToolResult {
	out := &mcpgo.CallToolResult{
		Content:           make([]mcpgo.Content, 0, len(r.Content)),
		StructuredContent: r.StructuredContent,
		IsError:           r.IsError,
	}
	for _, c := range r.Content {
		out.Content = append(out.Content, mcpgo.NewTextContent(c.Text))
	}
	return out
}

// HandleMessage despacha un mensaje JSON-RPC sin transporte. Devuelve nil para notificaciones.
func (s *Server) HandleMessage(ctx context.Context, raw []byte) mcpgo.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, raw)
}

// StreamableHandler atiende POST/GET/DELETE en StreamablePath (header Mcp-Session-Id).
func (s *Server) StreamableHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(StreamablePath),
		server.WithHTTPContextFunc(transportFunc("http")),
	)
}

// SSEServer es el binding SSE: GET SSEPath abre el stream y anuncia MessagePath?sessionId=.
func (s *Server) SSEServer() *server.SSEServer {
	return server.NewSSEServer(s.mcp,
		server.WithSSEEndpoint(SSEPath),
		server.WithMessageEndpoint(MessagePath),
		server.WithKeepAlive(true),
		server.WithSSEContextFunc(transportFunc("sse")),
	)
}

func transportFunc(name string) func(ctx context.Context, r *http.Request) context.Context {
	return func(ctx context.Context, _ *http.Request) context.Context {
		return WithTransport(ctx, name)
	}
}
