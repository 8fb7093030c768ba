package repository

import (
	"context"

	"farmlink_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageCollection mongo collection of messages, one document per message
const MessageCollection = "chat_messages"

// MessageRepository definition append-only message log
type MessageRepository interface {
	Append(ctx context.Context, msg *domain.Message) error
	// ListByConversation messages ordered by timestamp ascending
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	// MarkRead flags every unread message addressed to receiverID, returns how many changed
	MarkRead(ctx context.Context, conversationID, receiverID string) (int64, error)
	CountUnreadByRoom(ctx context.Context, userID string) ([]domain.RoomUnreadInfo, error)
}

type chatMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoChatMessageRepository create a MessageRepository
func NewMongoChatMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll: db.Collection(MessageCollection),
	}
}

// EnsureMessageIndexes creates the ordering and unread indexes
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(MessageCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	if err != nil {
		return unavailable(err, "create message indexes")
	}
	return nil
}

func (r *chatMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return unavailable(err, "insert message")
	}
	return nil
}

func (r *chatMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, unavailable(err, "query messages")
	}
	defer cur.Close(ctx)

	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, unavailable(err, "decode messages")
	}
	return messages, nil
}

func (r *chatMessageRepository) MarkRead(ctx context.Context, conversationID, receiverID string) (int64, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"receiver_id":     receiverID,
		"read":            false,
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, unavailable(err, "mark messages read")
	}
	return res.ModifiedCount, nil
}

func (r *chatMessageRepository) CountUnreadByRoom(ctx context.Context, userID string) ([]domain.RoomUnreadInfo, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "receiver_id", Value: userID},
			{Key: "read", Value: false},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversation_id"},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_unread_timestamp", Value: bson.D{{Key: "$max", Value: "$timestamp"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "last_unread_timestamp", Value: -1},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, unavailable(err, "aggregate unread")
	}
	defer cur.Close(ctx)

	results := []domain.RoomUnreadInfo{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, unavailable(err, "decode unread")
	}
	return results, nil
}
