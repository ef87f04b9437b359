package repository

import (
	"context"
	"sync"
	"time"

	"order-support-mcp/internal/model"
)

// MemoryAuditRepository guarda los últimos recibos cuando no hay Mongo configurado.
type MemoryAuditRepository struct {
	mu       sync.RWMutex
	max      int
	receipts []model.ToolCallReceipt
}

func NewMemoryAuditRepository(max int) *MemoryAuditRepository {
	if max <= 0 {
		max = 500
	}
	return &MemoryAuditRepository{max: max}
}

func (m *MemoryAuditRepository) Save(ctx context.Context, r *model.ToolCallReceipt) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, *r)
	if over := len(m.receipts) - m.max; over > 0 {
		m.receipts = append([]model.ToolCallReceipt(nil), m.receipts[over:]...)
	}
	return nil
}

// FindRecent devuelve los recibos más nuevos primero.
func (m *MemoryAuditRepository) FindRecent(ctx context.Context, limit int64) ([]*model.ToolCallReceipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.ToolCallReceipt, 0)
	for i := len(m.receipts) - 1; i >= 0; i-- {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		r := m.receipts[i]
		out = append(out, &r)
	}
	return out, nil
}

// FindByTool: más nuevos primero, igual que Mongo.
func (m *MemoryAuditRepository) FindByTool(ctx context.Context, toolName string) ([]*model.ToolCallReceipt, error) {
	return m.collect(func(r model.ToolCallReceipt) bool { return r.ToolName == toolName }, true), nil
}

// FindBySession: en orden cronológico, para reconstruir la conversación.
func (m *MemoryAuditRepository) FindBySession(ctx context.Context, sessionID string) ([]*model.ToolCallReceipt, error) {
	return m.collect(func(r model.ToolCallReceipt) bool { return r.SessionID == sessionID }, false), nil
}

func (m *MemoryAuditRepository) collect(match func(model.ToolCallReceipt) bool, newestFirst bool) []*model.ToolCallReceipt {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.ToolCallReceipt, 0)
	for i := range m.receipts {
		idx := i
		if newestFirst {
			idx = len(m.receipts) - 1 - i
		}
		if r := m.receipts[idx]; match(r) {
			out = append(out, &r)
		}
	}
	return out
}
