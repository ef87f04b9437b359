package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order-support-mcp/internal/config"
	"order-support-mcp/internal/controller"
	"order-support-mcp/internal/mcp"
	"order-support-mcp/internal/rabbit"
	"order-support-mcp/internal/repository"
	"order-support-mcp/internal/service"
)

// app agrupa lo que comparten serve, stdio y call.
type app struct {
	data     *repository.MockDataStrategy
	support  *service.SupportService
	server   *mcp.Server
	receipts controller.ReceiptReader

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{}

	a.data = repository.NewMockDataStrategy(repository.WithPool(cfg.SeedPoolSize, cfg.SeedPoolSeed))
	kb, err := service.NewKnowledgeBase(time.Now)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	opts := []service.Option{service.WithLogger(log)}

	// Conexión a RabbitMQ (opcional)
	var rabbitCh *amqp091.Channel
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })

		rabbitCh, err = conn.Channel()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open rabbitmq channel: %w", err)
		}
		if err := rabbit.DeclareEvents(rabbitCh); err != nil {
			a.Close()
			return nil, fmt.Errorf("declare events exchange: %w", err)
		}
		opts = append(opts, service.WithPublisher(rabbit.NewPublisher(rabbitCh)))
	}

	a.support = service.NewSupportService(a.data, kb, opts...)

	if rabbitCh != nil {
		if err := rabbit.SetupConsumers(ctx, rabbitCh, a.support, log); err != nil {
			a.Close()
			return nil, err
		}
	}

	// Auditoría: Mongo si está configurado, si no en memoria
	var store interface {
		mcp.ReceiptStore
		controller.ReceiptReader
	}
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		store = repository.NewMongoAuditRepository(client.Database(cfg.MongoDBName))
		log.Info("auditing tool calls to mongo", "db", cfg.MongoDBName)
	} else {
		store = repository.NewMemoryAuditRepository(0)
	}
	a.receipts = store

	reg := mcp.NewRegistry(mcp.WithAuditSink(mcp.NewStoreSink(store, log)), mcp.WithRegistryLogger(log))
	if err := mcp.RegisterSupportTools(reg, a.support); err != nil {
		a.Close()
		return nil, fmt.Errorf("register tools: %w", err)
	}
	a.server = mcp.NewServer(reg, cfg.ServerName, cfg.ServerVersion, log)
	return a, nil
}
