package mcp

import (
	"context"
	"log/slog"
	"time"

	"order-support-mcp/internal/model"
)

// AuditSink recibe un recibo por cada herramienta ejecutada.
type AuditSink interface {
	Record(ctx context.Context, r *model.ToolCallReceipt)
}

// ReceiptStore lo implementan los repositorios de auditoría (memoria, Mongo).
type ReceiptStore interface {
	Save(ctx context.Context, r *model.ToolCallReceipt) error
}

type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Record(ctx context.Context, r *model.ToolCallReceipt) {
	s.log.InfoContext(ctx, "tool call audited",
		"receipt_id", r.ID,
		"tool", r.ToolName,
		"transport", r.Transport,
		"is_error", r.IsError,
		"duration_ms", r.DurationMS,
	)
}

const storeTimeout = 3 * time.Second

// StoreSink persiste el recibo y además lo loguea. Un fallo al guardar no afecta la llamada.
type StoreSink struct {
	store ReceiptStore
	log   *slog.Logger
}

func NewStoreSink(store ReceiptStore, log *slog.Logger) *StoreSink {
	return &StoreSink{store: store, log: log}
}

func (s *StoreSink) Record(ctx context.Context, r *model.ToolCallReceipt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := s.store.Save(ctx, r); err != nil {
		s.log.ErrorContext(ctx, "failed to store tool call receipt", "receipt_id", r.ID, "error", err)
		return
	}
	s.log.DebugContext(ctx, "tool call receipt stored", "receipt_id", r.ID, "tool", r.ToolName)
}
