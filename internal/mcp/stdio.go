package mcp

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// ServeStdio atiende JSON-RPC delimitado por líneas hasta EOF o cancelación del contexto.
// Todo lo que no sea protocolo tiene que ir a stderr.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		return WithTransport(ctx, "stdio")
	})

	s.log.InfoContext(ctx, "stdio transport started")
	err := stdio.Listen(ctx, in, out)
	s.log.InfoContext(ctx, "stdio transport closed")
	return err
}
