package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"order-support-mcp/internal/config"
	"order-support-mcp/internal/controller"
	"order-support-mcp/internal/logging"
	"order-support-mcp/internal/mcp"
	"order-support-mcp/internal/middleware"
)

func main() {
	cfg := config.Load()

	app := &cli.App{
		Name:  cfg.ServerName,
		Usage: "customer support tools for a demo store over MCP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			cfg.LogLevel = c.String("log-level")
			return nil
		},
		// sin subcomando levanta el servidor HTTP
		Action: func(c *cli.Context) error { return serve(c.Context, cfg) },
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server (streamable MCP, SSE, REST and admin API)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Value: cfg.Port},
				},
				Action: func(c *cli.Context) error {
					cfg.Port = c.String("port")
					return serve(c.Context, cfg)
				},
			},
			{
				Name:   "stdio",
				Usage:  "speak MCP over stdin/stdout",
				Action: func(c *cli.Context) error { return stdio(c.Context, cfg) },
			},
			{
				Name:      "call",
				Usage:     "invoke one tool and print its text output",
				ArgsUsage: "<tool> [json-arguments]",
				Action:    func(c *cli.Context) error { return call(c, cfg) },
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New(os.Stderr, cfg.LogLevel)
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	router := controller.NewRouter(controller.RouterDeps{
		Name:       cfg.ServerName,
		Support:    a.support,
		MCP:        a.server,
		Receipts:   a.receipts,
		Stats:      a.data,
		AdminToken: cfg.AdminToken,
		Limiter:    limiter,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// sin WriteTimeout: los streams SSE son largos
		IdleTimeout: 120 * time.Second,
		// los streams SSE cierran con la señal
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "tools", len(a.server.Registry().List()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stdio(ctx context.Context, cfg *config.Config) error {
	// stdout es del protocolo; los logs van a stderr
	log := logging.New(os.Stderr, cfg.LogLevel)
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info("serving MCP over stdio")
	err = a.server.ServeStdio(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func call(c *cli.Context, cfg *config.Config) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: call <tool> [json-arguments]", 2)
	}
	name := c.Args().Get(0)

	args := map[string]any{}
	if raw := c.Args().Get(1); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return cli.Exit(fmt.Sprintf("arguments must be a JSON object: %v", err), 2)
		}
	}

	log := logging.New(os.Stderr, cfg.LogLevel)
	a, err := buildApp(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.server.Registry().Call(mcp.WithTransport(c.Context, "cli"), name, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, res.Text())
	if res.IsError {
		return cli.Exit("", 1)
	}
	return nil
}
