package repository

import (
	"context"
	"time"

	"order-support-mcp/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implementation del registro de auditoría de herramientas.
// Las órdenes no se persisten; sólo los recibos de cada llamada.
type MongoAuditRepository struct {
	col *mongo.Collection
}

func NewMongoAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{col: db.Collection("tool_call_receipts")}
}

func (m *MongoAuditRepository) Save(ctx context.Context, r *model.ToolCallReceipt) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	filter := bson.M{"receipt_id": r.ID}
	update := bson.M{"$set": r}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoAuditRepository) FindRecent(ctx context.Context, limit int64) ([]*model.ToolCallReceipt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	return m.find(ctx, bson.M{}, opts)
}

func (m *MongoAuditRepository) FindByTool(ctx context.Context, toolName string) ([]*model.ToolCallReceipt, error) {
	return m.find(ctx, bson.M{"tool_name": toolName}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
}

func (m *MongoAuditRepository) FindBySession(ctx context.Context, sessionID string) ([]*model.ToolCallReceipt, error) {
	return m.find(ctx, bson.M{"session_id": sessionID}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
}

func (m *MongoAuditRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.ToolCallReceipt, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.ToolCallReceipt
	for cur.Next(ctx) {
		var v model.ToolCallReceipt
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
