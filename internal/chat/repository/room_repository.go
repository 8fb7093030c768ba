package repository

import (
	"context"
	"errors"

	"farmlink_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationCollection mongo collection of conversation records
const ConversationCollection = "conversations"

// RoomRepository definition conversation records
type RoomRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Conversation, error)
	// FindByParticipant records whose participants contain userID, limited to scopeID when it is set
	FindByParticipant(ctx context.Context, userID, scopeID string) ([]*domain.Conversation, error)
	// FindForUser records naming userID as participant or legacy party
	FindForUser(ctx context.Context, userID string) ([]*domain.Conversation, error)
	// CreateIfAbsent inserts room under room.ID, false when the id is already taken
	CreateIfAbsent(ctx context.Context, room *domain.Conversation) (bool, error)
	// UpdateParticipants rewrites participants, and names when names is not nil
	UpdateParticipants(ctx context.Context, id string, participants, names []string) error
	UpdateSummary(ctx context.Context, id, text, senderID string, updatedAt int64) error
}

type chatRepository struct {
	roomsColl *mongo.Collection
}

// NewMongoChatRepository create new mongo conversation repository
func NewMongoChatRepository(db *mongo.Database) RoomRepository {
	return &chatRepository{
		roomsColl: db.Collection(ConversationCollection),
	}
}

// EnsureRoomIndexes creates the lookup indexes for participant and scope queries
func EnsureRoomIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ConversationCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "scope_id", Value: 1}}},
		{Keys: bson.D{{Key: "buyer_id", Value: 1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
	})
	if err != nil {
		return unavailable(err, "create conversation indexes")
	}
	return nil
}

func (r *chatRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var room domain.Conversation
	err := r.roomsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, unavailable(err, "find conversation")
	}
	return &room, nil
}

func (r *chatRepository) FindByParticipant(ctx context.Context, userID, scopeID string) ([]*domain.Conversation, error) {
	filter := bson.M{"participants": userID}
	if scopeID != "" {
		filter["scope_id"] = scopeID
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *chatRepository) FindForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"participants": userID},
		bson.M{"buyer_id": userID},
		bson.M{"seller_id": userID},
	}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
}

func (r *chatRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Conversation, error) {
	cur, err := r.roomsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable(err, "query conversations")
	}
	defer cur.Close(ctx)

	rooms := []*domain.Conversation{}
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, unavailable(err, "decode conversations")
	}
	return rooms, nil
}

func (r *chatRepository) CreateIfAbsent(ctx context.Context, room *domain.Conversation) (bool, error) {
	_, err := r.roomsColl.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err, "insert conversation")
	}
	return true, nil
}

func (r *chatRepository) UpdateParticipants(ctx context.Context, id string, participants, names []string) error {
	set := bson.M{"participants": participants}
	if names != nil {
		set["participant_names"] = names
	}
	return r.update(ctx, id, set)
}

func (r *chatRepository) UpdateSummary(ctx context.Context, id, text, senderID string, updatedAt int64) error {
	return r.update(ctx, id, bson.M{
		"last_message_text":      text,
		"last_message_sender_id": senderID,
		"updated_at":             updatedAt,
	})
}

func (r *chatRepository) update(ctx context.Context, id string, set bson.M) error {
	res, err := r.roomsColl.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return unavailable(err, "update conversation")
	}
	if res.MatchedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}
